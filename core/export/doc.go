// Package export renders reconciliation reports as downloadable files.
//
// Every format carries the same ordered columns: Description, Size,
// Expected, Received, Variance, Status. Rows keep the order produced by the
// engine. The header is always written, even for an empty report.
//
// # Usage
//
//	f, err := export.ParseFormat("xlsx")
//	if err != nil {
//		return err
//	}
//	w.Header().Set("Content-Type", f.ContentType())
//	err = export.Write(w, report, f)
package export
