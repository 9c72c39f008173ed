package codec

import (
	"errors"
	"strings"
)

var (
	// ErrSchemaMismatch is returned when columns and values (or tags) do not line up.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrTypeCoercion is returned when a value cannot be converted to its column type.
	ErrTypeCoercion = errors.New("type coercion failed")
	// ErrNullValue is returned for NULL column values, which have no entity representation.
	ErrNullValue = errors.New("NULL value")
	// ErrUnsupportedColumnType is returned for column types outside the supported set.
	ErrUnsupportedColumnType = errors.New("unsupported column type")
)

// Error locates a conversion failure. Err wraps one of the package sentinels or
// an entity error.
type Error struct {
	Op     string
	Table  string
	ID     string
	Column string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Table != "" {
		b.WriteString(" table ")
		b.WriteString(e.Table)
	}
	if e.ID != "" {
		b.WriteString(" id ")
		b.WriteString(e.ID)
	}
	if e.Column != "" {
		b.WriteString(" column ")
		b.WriteString(e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }
