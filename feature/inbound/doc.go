// Package inbound serves the receiving workflow over HTTP.
//
// An operator opens a session, uploads the delivery challan (as a photo or
// as a JSON record), scans stickers as boxes are unpacked and asks for the
// reconciliation report at any point. Each session holds at most one
// challan; uploading another replaces it. Stickers accumulate until the
// session is cleared.
//
// # HTTP Endpoints
//
//   - POST /sessions : opens a session.
//   - GET /sessions/:id : shows challan number, line and sticker counts.
//   - DELETE /sessions/:id : clears the session (?close=true removes it).
//   - POST /sessions/:id/challan : extracts a challan from field 'file'.
//   - PUT /sessions/:id/challan : sets the challan from a JSON body.
//   - GET /sessions/:id/challan : returns the challan.
//   - POST /sessions/:id/stickers : extracts stickers from fields 'files'.
//   - POST /sessions/:id/stickers/records : appends JSON sticker records.
//   - GET /sessions/:id/stickers : returns the scan log.
//   - GET /sessions/:id/reconciliation?format=json|csv|xlsx : the report.
//   - POST /sessions/:id/reconciliation/archive : archives the report.
//
// Reconciling without a challan answers 409. Unreadable documents answer
// 422 with the raw model output; an unreachable model answers 502.
package inbound
