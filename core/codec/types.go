package codec

import "strings"

// TypeTag is the scalar type of a relational column.
type TypeTag string

const (
	TagInteger TypeTag = "integer"
	TagText    TypeTag = "text"
	TagFloat   TypeTag = "floating-point"
)

var declaredTypes = map[string]TypeTag{
	"int":       TagInteger,
	"integer":   TagInteger,
	"bigint":    TagInteger,
	"smallint":  TagInteger,
	"tinyint":   TagInteger,
	"mediumint": TagInteger,

	"varchar":    TagText,
	"char":       TagText,
	"character":  TagText,
	"nvarchar":   TagText,
	"nchar":      TagText,
	"text":       TagText,
	"tinytext":   TagText,
	"mediumtext": TagText,
	"longtext":   TagText,

	"double":  TagFloat,
	"float":   TagFloat,
	"real":    TagFloat,
	"decimal": TagFloat,
	"numeric": TagFloat,
}

// ParseTypeTag maps a declared column type such as "int(11) unsigned" or
// "varchar(64)" to its tag. Types outside the supported set are returned as their
// lower-cased base name, for which Supported reports false.
func ParseTypeTag(declared string) TypeTag {
	base := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = base[:i]
	}
	if fields := strings.Fields(base); len(fields) > 0 {
		base = fields[0]
	}
	if tag, ok := declaredTypes[base]; ok {
		return tag
	}
	return TypeTag(base)
}

// Supported reports whether values can be coerced to the tag.
func (t TypeTag) Supported() bool {
	_, ok := coercers[t]
	return ok
}

func (t TypeTag) String() string { return string(t) }
