package entity

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"tablesync/core/utils"

	"github.com/cespare/xxhash/v2"
)

var (
	// ErrMalformedIdentifier is returned when an id cannot be read as an integer.
	ErrMalformedIdentifier = errors.New("malformed identifier")
	// ErrDuplicateField is returned when a field name appears twice.
	ErrDuplicateField = errors.New("duplicate field")
)

// Field is a single named value of an Entity.
type Field struct {
	Name  string
	Value Value
}

// Entity is an immutable record identified by an integer id.
// The zero Entity is not valid; use New or NewFromFields.
type Entity struct {
	table  string
	id     int64
	fields []Field
	key    string
}

// New builds an Entity from a field mapping.
// The id is coerced to an integer and fails with ErrMalformedIdentifier when that
// is not possible. Field values must be scalars accepted by ValueOf.
func New(table string, id any, fields map[string]any) (Entity, error) {
	list := make([]Field, 0, len(fields))
	for name, raw := range fields {
		v, err := ValueOf(raw)
		if err != nil {
			return Entity{}, fmt.Errorf("field %s: %w", name, err)
		}
		list = append(list, Field{Name: name, Value: v})
	}
	return build(table, id, list)
}

// NewFromFields builds an Entity from already typed fields in any order.
func NewFromFields(table string, id any, fields []Field) (Entity, error) {
	list := make([]Field, len(fields))
	copy(list, fields)
	for _, f := range list {
		if f.Value.Kind() == KindInvalid {
			return Entity{}, fmt.Errorf("field %s: %w: zero value", f.Name, ErrUnsupportedValue)
		}
	}
	return build(table, id, list)
}

func build(table string, rawID any, fields []Field) (Entity, error) {
	id, err := coerceID(rawID)
	if err != nil {
		return Entity{}, err
	}

	sortFields(fields)
	for i := 1; i < len(fields); i++ {
		if fields[i].Name == fields[i-1].Name {
			return Entity{}, fmt.Errorf("%w: %s", ErrDuplicateField, fields[i].Name)
		}
	}

	e := Entity{table: table, id: id, fields: fields}
	e.key = e.buildKey()
	return e, nil
}

func coerceID(raw any) (int64, error) {
	if v, ok := raw.(Value); ok {
		raw = v.Interface()
	}
	id, err := utils.ToInt64(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v (%T)", ErrMalformedIdentifier, raw, raw)
	}
	return id, nil
}

// LessName orders names by their lower-cased form, falling back to the exact name
// so that names differing only in case still sort deterministically.
func LessName(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

func sortFields(fields []Field) {
	sort.Slice(fields, func(i, j int) bool { return LessName(fields[i].Name, fields[j].Name) })
}

// SortNames orders column names with the same rule used for entity fields.
func SortNames(names []string) {
	sort.Slice(names, func(i, j int) bool { return LessName(names[i], names[j]) })
}

func (e Entity) buildKey() string {
	b := make([]byte, 0, 16+len(e.fields)*24)
	b = strconv.AppendInt(b, e.id, 10)
	b = append(b, ';')
	for _, f := range e.fields {
		b = strconv.AppendInt(b, int64(len(f.Name)), 10)
		b = append(b, ':')
		b = append(b, f.Name...)
		b = append(b, '=')
		b = f.Value.appendKey(b)
		b = append(b, ';')
	}
	return string(b)
}

// Table returns the table the entity was read from.
func (e Entity) Table() string { return e.table }

// ID returns the integer primary key.
func (e Entity) ID() int64 { return e.id }

// Len returns the number of fields, excluding the id.
func (e Entity) Len() int { return len(e.fields) }

// Fields returns a copy of the fields in canonical order.
func (e Entity) Fields() []Field {
	out := make([]Field, len(e.fields))
	copy(out, e.fields)
	return out
}

// Field looks up a field by its exact name.
func (e Entity) Field(name string) (Value, bool) {
	for _, f := range e.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Map returns the fields as native Go values keyed by name.
func (e Entity) Map() map[string]any {
	m := make(map[string]any, len(e.fields))
	for _, f := range e.fields {
		m[f.Name] = f.Value.Interface()
	}
	return m
}

// WithTable returns a copy of the entity bound to another table.
func (e Entity) WithTable(table string) Entity {
	e.fields = e.Fields()
	e.table = table
	return e
}

// IsZero reports whether the entity was never built.
func (e Entity) IsZero() bool { return e.key == "" }

// Equal reports whether both entities share id and fields. The table is ignored.
func (e Entity) Equal(o Entity) bool { return e.key == o.key }

// Key is the canonical identity of the entity, suitable as a map key.
func (e Entity) Key() string { return e.key }

// Hash returns a 64-bit hash consistent with Equal.
func (e Entity) Hash() uint64 { return xxhash.Sum64String(e.key) }

func (e Entity) String() string {
	var sb strings.Builder
	sb.WriteString("(table:")
	sb.WriteString(e.table)
	sb.WriteString(", id:")
	sb.WriteString(strconv.FormatInt(e.id, 10))
	sb.WriteString(", fields:{")
	for i, f := range e.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Name)
		sb.WriteByte(':')
		sb.WriteString(f.Value.String())
	}
	sb.WriteString("})")
	return sb.String()
}
