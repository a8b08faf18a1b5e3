package models_test

import (
	"testing"
	"time"

	"challan-reconciler/core/reconcile"
	"challan-reconciler/feature/archive/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "reconciliation_reports", models.ReportRecord{}.TableName())
	assert.Equal(t, "reconciliation_rows", models.RowRecord{}.TableName())
	assert.Len(t, models.All(), 2)
}

func TestFromReport_RoundTrip(t *testing.T) {
	number := "DC-808"
	date, ok := reconcile.ParseDate("2024-02-29")
	require.True(t, ok)

	report, err := reconcile.Reconcile(&reconcile.Challan{
		Number: &number,
		Date:   &date,
		Lines:  []reconcile.ChallanLine{{Description: "Tee", Size: "S", ExpectedQty: 2}},
	}, []reconcile.Sticker{{Style: "Tee", CodeSize: "S"}, {Style: "Cap", CodeSize: "FREE"}})
	require.NoError(t, err)

	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	rec := models.FromReport("rep-1", "sess-1", report, created)

	assert.Equal(t, "rep-1", rec.ID)
	assert.Equal(t, "DC-808", *rec.ChallanNumber)
	assert.Equal(t, 1, rec.Shortages)
	require.Len(t, rec.Rows, 2)
	assert.Equal(t, 1, rec.Rows[1].Position)
	assert.True(t, rec.Rows[1].Unmatched)
	assert.Equal(t, "rep-1", rec.Rows[0].ReportID)

	back := rec.ToReport()
	assert.Equal(t, report.Rows, back.Rows)
	assert.Equal(t, report.Summary, back.Summary)
	assert.Equal(t, "2024-02-29", back.ChallanDate.String())
}
