package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"challan-reconciler/core/reconcile"
)

// WriteCSV writes the header and one record per row.
func WriteCSV(w io.Writer, rows []reconcile.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
