// Package logger builds the application's zap logger.
//
// Console encoding with colored levels is the default for operators
// running the server by hand; json suits log shipping. WithRayID ties the
// lines of one request together.
//
// # Usage
//
//	log, err := logger.New(&cfg.Log)
//	if err != nil {
//		return err
//	}
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Reconciliation failed", zap.Error(err))
package logger
