// Package config loads the reconciler configuration.
//
// Values come from the environment, optionally seeded from a .env file.
// Keys are nested by section and flattened with underscores, so
// server.port is read from SERVER_PORT and extractor.project_id from
// EXTRACTOR_PROJECT_ID. Defaults live in the default struct tags of each
// section and validation rules in the validate tags.
//
// Sections:
//   - Server: port, API key, body limit, timeouts
//   - Log: level and format
//   - Extractor: Vertex AI project, region, model, concurrency
//   - Session: in-memory session limits and idle expiry
//   - Storage: MinIO/S3 archive bucket
//   - Database: MySQL or SQLite archive database
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//		return err
//	}
//	fmt.Println(cfg.Server.Port)
package config
