// Package database connects to the report archive database and inspects
// its schema.
//
// MySQL is the production driver. SQLite is supported for local runs and
// tests, with ":memory:" as the name for a throwaway database.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//		log.Warn("Archive database unavailable", zap.Error(err))
//	}
//
//	columns, err := database.GetTableColumns(db, "reconciliation_reports")
package database
