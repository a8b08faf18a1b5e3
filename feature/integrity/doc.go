// Package integrity validates the infrastructure the archive depends on.
//
// # Checks Provided
//
//   - Structure: Checks that the archive folders (challans/, stickers/, reports/) exist in the storage bucket.
//   - Database: Validates that the archive tables match the GORM models (columns, declared types).
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/database : Runs schema check (supports ?fix=true to migrate).
package integrity
