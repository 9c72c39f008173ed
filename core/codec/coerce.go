package codec

import (
	"fmt"
	"math"
	"strconv"

	"tablesync/core/entity"
	"tablesync/core/utils"
)

// Coercer converts a value to the representation of one column type.
type Coercer func(entity.Value) (entity.Value, error)

var coercers = map[TypeTag]Coercer{
	TagInteger: toInteger,
	TagText:    toText,
	TagFloat:   toFloat,
}

// Coerce converts v for a column declared with tag.
func Coerce(tag TypeTag, v entity.Value) (entity.Value, error) {
	c, ok := coercers[tag]
	if !ok {
		return entity.Value{}, fmt.Errorf("%w: %q", ErrUnsupportedColumnType, string(tag))
	}
	return c(v)
}

func toInteger(v entity.Value) (entity.Value, error) {
	switch v.Kind() {
	case entity.KindInteger:
		return v, nil
	case entity.KindFloat, entity.KindString:
		i, err := utils.ToInt64(v.Interface())
		if err != nil {
			return entity.Value{}, fmt.Errorf("%w: %s is not an integer", ErrTypeCoercion, v)
		}
		return entity.IntValue(i), nil
	}
	return entity.Value{}, fmt.Errorf("%w: invalid value", ErrTypeCoercion)
}

func toText(v entity.Value) (entity.Value, error) {
	switch v.Kind() {
	case entity.KindString:
		return v, nil
	case entity.KindInteger:
		return entity.StringValue(strconv.FormatInt(v.Int(), 10)), nil
	case entity.KindFloat:
		return entity.StringValue(utils.ToString(v.Float())), nil
	}
	return entity.Value{}, fmt.Errorf("%w: invalid value", ErrTypeCoercion)
}

func toFloat(v entity.Value) (entity.Value, error) {
	switch v.Kind() {
	case entity.KindFloat:
		return v, nil
	case entity.KindInteger, entity.KindString:
		f, err := utils.ToFloat64(v.Interface())
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return entity.Value{}, fmt.Errorf("%w: %s is not a number", ErrTypeCoercion, v)
		}
		return entity.FloatValue(f), nil
	}
	return entity.Value{}, fmt.Errorf("%w: invalid value", ErrTypeCoercion)
}
