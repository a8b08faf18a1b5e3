package export

import (
	"encoding/json"
	"fmt"
	"io"

	"challan-reconciler/core/reconcile"
)

// WriteJSON writes the full report, summary included, as indented JSON.
// A report without rows is written with an empty array rather than null.
func WriteJSON(w io.Writer, report *reconcile.Report) error {
	out := *report
	if out.Rows == nil {
		out.Rows = []reconcile.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
