package export

import (
	"fmt"
	"io"
	"strings"

	"challan-reconciler/core/reconcile"
)

// Columns is the header of every tabular export.
var Columns = []string{"Description", "Size", "Expected", "Received", "Variance", "Status"}

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat resolves a user supplied format name. Empty means JSON.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", name)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	return string(f)
}

// FileName builds a download name for a report, using the challan number
// when there is one.
func FileName(report *reconcile.Report, f Format) string {
	base := "reconciliation_report"
	if report != nil && report.ChallanNumber != nil {
		if n := sanitize(*report.ChallanNumber); n != "" {
			base += "_" + n
		}
	}
	return base + "." + f.Extension()
}

// Write renders report to w in the given format.
func Write(w io.Writer, report *reconcile.Report, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, report.Rows)
	case FormatXLSX:
		return WriteXLSX(w, report.Rows)
	case FormatJSON:
		return WriteJSON(w, report)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

func record(r reconcile.Row) []string {
	return []string{
		r.Description,
		r.Size,
		fmt.Sprint(r.Expected),
		fmt.Sprint(r.Received),
		fmt.Sprint(r.Variance),
		string(r.Status),
	}
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
