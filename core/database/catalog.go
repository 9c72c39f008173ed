package database

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tablesync/core/codec"
	"tablesync/core/entity"

	"gorm.io/gorm"
)

// Column is one relational column as seen by the schema catalog.
type Column struct {
	// Name is the declared column name.
	Name string `json:"name"`
	// Type is the declared type, lower-cased (e.g. "int(11) unsigned").
	Type string `json:"type"`
	// Tag is the scalar type the declared type maps to.
	Tag codec.TypeTag `json:"tag"`
}

// SchemaCatalog is a read-only view of the relational schema.
// Columns are ordered with id first, then by name using the entity field rule,
// so that tags line up with the values codec.ToRelationalRow produces.
type SchemaCatalog interface {
	// ListTables returns the table names of the database, sorted.
	ListTables(ctx context.Context) ([]string, error)
	// Columns returns the ordered columns of table.
	Columns(ctx context.Context, table string) ([]Column, error)
	// ColumnTypes returns the ordered type tags of table.
	ColumnTypes(ctx context.Context, table string) ([]codec.TypeTag, error)
}

// Catalog reads the schema from the live database on every call.
type Catalog struct {
	db *gorm.DB
}

// NewCatalog creates a catalog over db.
func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) ListTables(ctx context.Context) ([]string, error) {
	tables, err := c.db.WithContext(ctx).Migrator().GetTables()
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	sort.Strings(tables)
	return tables, nil
}

func (c *Catalog) Columns(ctx context.Context, table string) ([]Column, error) {
	infos, err := GetTableColumns(ctx, c.db, table)
	if err != nil {
		return nil, err
	}
	return orderColumns(table, infos)
}

func (c *Catalog) ColumnTypes(ctx context.Context, table string) ([]codec.TypeTag, error) {
	columns, err := c.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	return Tags(columns), nil
}

// Tags extracts the type tags of columns.
func Tags(columns []Column) []codec.TypeTag {
	tags := make([]codec.TypeTag, len(columns))
	for i, col := range columns {
		tags[i] = col.Tag
	}
	return tags
}

// Names extracts the names of columns.
func Names(columns []Column) []string {
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}
	return names
}

func orderColumns(table string, infos []ColumnInfo) ([]Column, error) {
	if len(infos) == 0 {
		return nil, fmt.Errorf("%w: table %s has no columns", codec.ErrSchemaMismatch, table)
	}

	var id *Column
	rest := make([]Column, 0, len(infos))
	for _, info := range infos {
		col := Column{Name: info.Field, Type: info.Type, Tag: codec.ParseTypeTag(info.Type)}
		if id == nil && strings.EqualFold(info.Field, codec.IDColumn) {
			id = &col
			continue
		}
		rest = append(rest, col)
	}
	if id == nil {
		return nil, fmt.Errorf("%w: table %s has no %s column", codec.ErrSchemaMismatch, table, codec.IDColumn)
	}

	sort.Slice(rest, func(i, j int) bool { return entity.LessName(rest[i].Name, rest[j].Name) })
	return append([]Column{*id}, rest...), nil
}
