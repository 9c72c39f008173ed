package codec

import (
	"fmt"
	"strconv"
	"strings"

	"tablesync/core/entity"
	"tablesync/core/utils"
)

// IDColumn is the primary key column every synchronized table must have.
const IDColumn = "id"

// Row is a relational row: column names and values at the same positions.
type Row struct {
	Columns []string
	Values  []any
}

// FromRelationalRow decodes a fetched row of table. The id column supplies the id,
// every other column becomes a field.
func FromRelationalRow(table string, columns []string, values []any) (entity.Entity, error) {
	if len(columns) != len(values) {
		return entity.Entity{}, &Error{Op: "decode", Table: table,
			Err: fmt.Errorf("%w: %d columns, %d values", ErrSchemaMismatch, len(columns), len(values))}
	}

	var id any
	idSeen := false
	fields := make([]entity.Field, 0, len(columns))
	for i, name := range columns {
		if strings.EqualFold(name, IDColumn) && !idSeen {
			id, idSeen = values[i], true
			continue
		}
		if values[i] == nil {
			return entity.Entity{}, &Error{Op: "decode", Table: table, ID: rawID(id, idSeen), Column: name,
				Err: fmt.Errorf("%w: %w in column %s", ErrTypeCoercion, ErrNullValue, name)}
		}
		v, err := entity.ValueOf(values[i])
		if err != nil {
			return entity.Entity{}, &Error{Op: "decode", Table: table, ID: rawID(id, idSeen), Column: name,
				Err: fmt.Errorf("%w: %w", ErrTypeCoercion, err)}
		}
		fields = append(fields, entity.Field{Name: name, Value: v})
	}
	if !idSeen {
		return entity.Entity{}, &Error{Op: "decode", Table: table,
			Err: fmt.Errorf("%w: no %s column", entity.ErrMalformedIdentifier, IDColumn)}
	}

	e, err := entity.NewFromFields(table, id, fields)
	if err != nil {
		return entity.Entity{}, &Error{Op: "decode", Table: table, ID: rawID(id, true), Err: err}
	}
	return e, nil
}

// ToRelationalRow encodes e for a table whose column tags are ordered id first,
// then by name with the entity field rule. The i-th tag coerces the i-th value.
func ToRelationalRow(e entity.Entity, tags []TypeTag) (Row, error) {
	fields := e.Fields()
	id := strconv.FormatInt(e.ID(), 10)
	if len(tags) != len(fields)+1 {
		return Row{}, &Error{Op: "encode", Table: e.Table(), ID: id,
			Err: fmt.Errorf("%w: %d column types for %d values", ErrSchemaMismatch, len(tags), len(fields)+1)}
	}

	row := Row{
		Columns: make([]string, 0, len(tags)),
		Values:  make([]any, 0, len(tags)),
	}
	names := append([]string{IDColumn}, fieldNames(fields)...)
	values := append([]entity.Value{entity.IntValue(e.ID())}, fieldValues(fields)...)
	for i, tag := range tags {
		v, err := Coerce(tag, values[i])
		if err != nil {
			return Row{}, &Error{Op: "encode", Table: e.Table(), ID: id, Column: names[i], Err: err}
		}
		row.Columns = append(row.Columns, names[i])
		row.Values = append(row.Values, v.Interface())
	}
	return row, nil
}

// CheckColumns verifies that the fields of e are exactly the non-id columns, in
// catalog order and ignoring case. It guards the positional coupling of
// ToRelationalRow against entities carrying other attributes.
func CheckColumns(e entity.Entity, columns []string) error {
	fields := e.Fields()
	if len(columns) != len(fields)+1 {
		return &Error{Op: "encode", Table: e.Table(), ID: strconv.FormatInt(e.ID(), 10),
			Err: fmt.Errorf("%w: %d columns for %d values", ErrSchemaMismatch, len(columns), len(fields)+1)}
	}
	if !strings.EqualFold(columns[0], IDColumn) {
		return &Error{Op: "encode", Table: e.Table(), ID: strconv.FormatInt(e.ID(), 10), Column: columns[0],
			Err: fmt.Errorf("%w: first column must be %s", ErrSchemaMismatch, IDColumn)}
	}
	for i, f := range fields {
		if !strings.EqualFold(columns[i+1], f.Name) {
			return &Error{Op: "encode", Table: e.Table(), ID: strconv.FormatInt(e.ID(), 10), Column: columns[i+1],
				Err: fmt.Errorf("%w: field %s does not match column %s", ErrSchemaMismatch, f.Name, columns[i+1])}
		}
	}
	return nil
}

func fieldNames(fields []entity.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func fieldValues(fields []entity.Field) []entity.Value {
	values := make([]entity.Value, len(fields))
	for i, f := range fields {
		values[i] = f.Value
	}
	return values
}

func rawID(id any, ok bool) string {
	if !ok || id == nil {
		return ""
	}
	return utils.ToString(id)
}
