// Package entity defines the canonical, store-agnostic record used by tablesync.
//
// An Entity is what both stores are translated into before they are compared. It is
// immutable once built and its identity is defined over the id and the field list
// only; the table name travels with the entity but never takes part in equality.
//
// # Canonical Form
//
// Fields are kept sorted by name, case-insensitively, so two entities built from the
// same logical field set in any input order share the same internal representation,
// the same Key and the same Hash.
//
// Field values are restricted to a closed scalar set (integer, string, floating-point).
// Values of different kinds are never equal: the integer 5 and the string "5" are
// different values. Any coercion must happen before construction, at the codec
// boundary.
//
// # Usage
//
//	e, err := entity.New("users", "1", map[string]any{"name": "Alice", "age": 30})
//	if err != nil {
//	    return err
//	}
//	seen := map[string]entity.Entity{e.Key(): e}
package entity
