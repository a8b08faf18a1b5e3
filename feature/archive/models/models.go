package models

import (
	"time"

	"challan-reconciler/core/reconcile"
)

// ReportRecord is one archived reconciliation run.
type ReportRecord struct {
	ID            string     `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	SessionID     string     `gorm:"column:session_id;type:varchar(64);index" json:"session_id"`
	ChallanNumber *string    `gorm:"column:challan_number;type:varchar(64)" json:"challan_number"`
	ChallanDate   *time.Time `gorm:"column:challan_date;type:date" json:"challan_date"`
	Lines         int        `gorm:"column:line_count" json:"lines"`
	Stickers      int        `gorm:"column:sticker_count" json:"stickers"`
	Matches       int        `gorm:"column:matches" json:"matches"`
	Shortages     int        `gorm:"column:shortages" json:"shortages"`
	Overages      int        `gorm:"column:overages" json:"overages"`
	Unmatched     int        `gorm:"column:unmatched" json:"unmatched"`
	// ObjectKey is the storage key prefix of the exported files, empty when
	// storage archiving is off.
	ObjectKey string      `gorm:"column:object_key;type:varchar(255)" json:"object_key,omitempty"`
	CreatedAt time.Time   `gorm:"column:created_at" json:"created_at"`
	Rows      []RowRecord `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"rows,omitempty"`
}

func (ReportRecord) TableName() string {
	return "reconciliation_reports"
}

// RowRecord is one row of an archived report.
type RowRecord struct {
	ID          uint   `gorm:"primaryKey;column:id" json:"-"`
	ReportID    string `gorm:"column:report_id;type:varchar(36);index" json:"-"`
	Position    int    `gorm:"column:position" json:"position"`
	Description string `gorm:"column:description;type:varchar(512)" json:"description"`
	Size        string `gorm:"column:size;type:varchar(32)" json:"size"`
	Expected    int    `gorm:"column:expected" json:"expected"`
	Received    int    `gorm:"column:received" json:"received"`
	Variance    int    `gorm:"column:variance" json:"variance"`
	Status      string `gorm:"column:status;type:varchar(8)" json:"status"`
	Unmatched   bool   `gorm:"column:unmatched" json:"unmatched"`
}

func (RowRecord) TableName() string {
	return "reconciliation_rows"
}

// All lists the archive models in migration order.
func All() []any {
	return []any{&ReportRecord{}, &RowRecord{}}
}

// FromReport builds the record for a report. Rows keep report order.
func FromReport(id, sessionID string, report *reconcile.Report, createdAt time.Time) *ReportRecord {
	rec := &ReportRecord{
		ID:        id,
		SessionID: sessionID,
		Lines:     report.Summary.Lines,
		Stickers:  report.Summary.Stickers,
		Matches:   report.Summary.Matches,
		Shortages: report.Summary.Shortages,
		Overages:  report.Summary.Overages,
		Unmatched: report.Summary.Unmatched,
		CreatedAt: createdAt,
		Rows:      make([]RowRecord, 0, len(report.Rows)),
	}
	if report.ChallanNumber != nil {
		n := *report.ChallanNumber
		rec.ChallanNumber = &n
	}
	if report.ChallanDate != nil {
		d := report.ChallanDate.Time
		rec.ChallanDate = &d
	}
	for i, r := range report.Rows {
		rec.Rows = append(rec.Rows, RowRecord{
			ReportID:    id,
			Position:    i,
			Description: r.Description,
			Size:        r.Size,
			Expected:    r.Expected,
			Received:    r.Received,
			Variance:    r.Variance,
			Status:      string(r.Status),
			Unmatched:   r.Unmatched,
		})
	}
	return rec
}

// ToReport rebuilds the report. Rows must be loaded in position order.
func (r *ReportRecord) ToReport() *reconcile.Report {
	report := &reconcile.Report{
		Rows: make([]reconcile.Row, 0, len(r.Rows)),
		Summary: reconcile.Summary{
			Lines:     r.Lines,
			Stickers:  r.Stickers,
			Matches:   r.Matches,
			Shortages: r.Shortages,
			Overages:  r.Overages,
			Unmatched: r.Unmatched,
		},
	}
	if r.ChallanNumber != nil {
		n := *r.ChallanNumber
		report.ChallanNumber = &n
	}
	if r.ChallanDate != nil {
		report.ChallanDate = &reconcile.Date{Time: *r.ChallanDate}
	}
	for _, row := range r.Rows {
		report.Rows = append(report.Rows, reconcile.Row{
			Description: row.Description,
			Size:        row.Size,
			Expected:    row.Expected,
			Received:    row.Received,
			Variance:    row.Variance,
			Status:      reconcile.Status(row.Status),
			Unmatched:   row.Unmatched,
		})
	}
	return report
}
