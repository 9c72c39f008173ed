// Package codec converts records between the native shapes of both stores and
// entity.Entity.
//
// Key-value items carry their own scalar kinds, so decoding them needs no schema.
// Relational rows are encoded positionally: the i-th TypeTag applies to the i-th
// value of (id, fields in canonical order). Tags must therefore come from the
// schema catalog of the same table, which orders columns with the entity rule.
//
// # Usage
//
//	e, err := codec.FromRelationalRow("users", []string{"age", "id", "name"}, []any{int64(30), int64(1), "Alice"})
//	item := codec.ToKeyValueItem(e)
//
//	tags, _ := catalog.ColumnTypes(ctx, "users") // [integer integer text]
//	row, err := codec.ToRelationalRow(e, tags)
//
// Every failure is a *codec.Error that matches one of the sentinels with errors.Is.
package codec
