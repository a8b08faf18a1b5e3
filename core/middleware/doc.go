// Package middleware groups the HTTP middleware of the fiber application.
//
// # Components
//
//   - rayid: assigns every request a ray id, stored in locals and echoed
//     in the X-Ray-ID response header.
//   - requestlog: logs each request with its ray id, status and latency.
//   - auth: requires the configured API key in the X-API-Key header.
//
// Register rayid first so the others can log the id.
package middleware
