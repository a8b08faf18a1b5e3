// Package archive keeps an append-only audit trail of reconciliation
// outputs and the document images they were built from.
//
// Two optional backends are used when configured:
//
//   - Object storage: reports/<id>.csv and reports/<id>.json for every
//     archived report, plus uploaded images under challans/<session>/ and
//     stickers/<session>/.
//   - Database: the reconciliation_reports and reconciliation_rows tables.
//
// Session state itself is never archived.
//
// # HTTP Endpoints
//
//   - GET /archives : lists archived reports.
//   - GET /archives/:id : returns one report with rows.
//   - GET /archives/:id/download?format=csv|xlsx|json : downloads a report.
package archive
