// Package database handles database connections, schema inspection and raw row access.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly configure
// MySQL or SQLite connections based on the application's configuration.
//
// # Connect
//
// The generic Connect function establishes a connection to the database. SQLite is
// limited to a single open connection so in-memory databases stay shared.
//
// # Schema Inspection
//
// GetTableColumns reads the declared columns of a table. Catalog builds on it to
// order columns id first, then by name, and to map every declared type to the codec
// type tag. RunCatalog memoizes those lookups for the lifetime of one run.
//
// # Rows
//
// Store reads whole tables as generic rows and writes single rows with REPLACE INTO
// and DELETE ... WHERE, without any model structs.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(ctx, db, "users")
package database
