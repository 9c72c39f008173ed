// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production).
//
// # Scoped Loggers
//
// A run of tablesync is identified by a run id and processes many tables, possibly
// in parallel. WithRun and WithTable attach those identifiers so that every line a
// table produces can be correlated.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log = logger.WithRun(log, runID, "backup")
//
//	l := logger.WithTable(log, "users")
//	l.Error("Upsert failed", zap.Error(err))
package logger
