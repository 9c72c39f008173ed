// Package config provides configuration management for tablesync.
//
// It utilizes Viper for loading configuration from a .env file, environment
// variables and an optional tablesync.yaml file. Environment variables win over the
// file, which wins over the defaults declared in `default` struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Database: MySQL or SQLite connection details
//   - KV: key-value backend (redis, bolt, object) and its connection
//   - Storage: S3/MinIO credentials and bucket for the object backend
//   - Log: Logging level and format
//   - Sync: table filters, concurrency, delete matching and the run lock
//   - Metrics: Pushgateway export
//
// Nested keys map to environment variables by replacing dots with underscores, so
// kv.redis_addr is read from KV_REDIS_ADDR.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.KV.Backend)
package config
