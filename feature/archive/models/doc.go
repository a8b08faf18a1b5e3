// Package models defines the archive tables as GORM models.
//
// The column and type tags double as the expected schema for the database
// integrity check, so keep them explicit.
//
//   - reconciliation_reports: one row per archived run with its summary.
//   - reconciliation_rows: the report rows, ordered by position.
package models
