package entity

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrUnsupportedValue is returned when a field value is outside the scalar set.
var ErrUnsupportedValue = errors.New("unsupported field value")

// Kind identifies the scalar type held by a Value.
type Kind uint8

const (
	// KindInvalid is the kind of the zero Value.
	KindInvalid Kind = iota
	// KindInteger holds an int64.
	KindInteger
	// KindString holds a string.
	KindString
	// KindFloat holds a float64.
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	default:
		return "invalid"
	}
}

// Value is a scalar field value: an integer, a string or a floating-point number.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// IntValue returns an integer Value.
func IntValue(v int64) Value {
	return Value{kind: KindInteger, i: v}
}

// StringValue returns a string Value.
func StringValue(v string) Value {
	return Value{kind: KindString, s: v}
}

// FloatValue returns a floating-point Value.
func FloatValue(v float64) Value {
	return Value{kind: KindFloat, f: v}
}

// ValueOf wraps a native Go scalar.
// Signed and unsigned integers become integers, floats become floats and
// strings or byte slices become strings. A Value is returned unchanged.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		if x.kind == KindInvalid {
			return Value{}, fmt.Errorf("%w: zero value", ErrUnsupportedValue)
		}
		return x, nil
	case int:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case int32:
		return IntValue(int64(x)), nil
	case int16:
		return IntValue(int64(x)), nil
	case int8:
		return IntValue(int64(x)), nil
	case uint:
		return unsignedValue(uint64(x))
	case uint64:
		return unsignedValue(x)
	case uint32:
		return IntValue(int64(x)), nil
	case uint16:
		return IntValue(int64(x)), nil
	case uint8:
		return IntValue(int64(x)), nil
	case float64:
		return FloatValue(x), nil
	case float32:
		return FloatValue(float64(x)), nil
	case string:
		return StringValue(x), nil
	case []byte:
		return StringValue(string(x)), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

func unsignedValue(v uint64) (Value, error) {
	if v > math.MaxInt64 {
		return Value{}, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, v)
	}
	return IntValue(int64(v)), nil
}

// Kind returns the scalar kind.
func (v Value) Kind() Kind { return v.kind }

// Int returns the integer payload. It is zero unless Kind is KindInteger.
func (v Value) Int() int64 { return v.i }

// Float returns the floating-point payload. It is zero unless Kind is KindFloat.
func (v Value) Float() float64 { return v.f }

// Text returns the string payload. It is empty unless Kind is KindString.
func (v Value) Text() string { return v.s }

// Interface returns the payload as int64, float64 or string.
func (v Value) Interface() any {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	default:
		return nil
	}
}

// Equal reports whether both values have the same kind and payload.
// Floats compare by bit pattern so that Equal agrees with the entity key.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInteger:
		return v.i == o.i
	case KindFloat:
		return math.Float64bits(v.f) == math.Float64bits(o.f)
	case KindString:
		return v.s == o.s
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	default:
		return "<invalid>"
	}
}

// appendKey writes an unambiguous encoding of the value.
func (v Value) appendKey(b []byte) []byte {
	b = append(b, byte('0'+v.kind))
	switch v.kind {
	case KindInteger:
		b = strconv.AppendInt(b, v.i, 10)
	case KindFloat:
		b = strconv.AppendUint(b, math.Float64bits(v.f), 16)
	case KindString:
		b = strconv.AppendInt(b, int64(len(v.s)), 10)
		b = append(b, ':')
		b = append(b, v.s...)
	}
	return b
}
