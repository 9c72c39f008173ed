package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrNotInteger is returned when a value has no exact integer representation.
	ErrNotInteger = errors.New("not an integer")
	// ErrNotNumber is returned when a value cannot be read as a number.
	ErrNotNumber = errors.New("not a number")
)

// ToInt64 converts various types to int64 using explicit type switching.
// Unlike a lossy cast it fails when the value has no exact integer form:
// fractional floats, out of range unsigned values and non-numeric strings.
func ToInt64(val any) (int64, error) {
	switch v := val.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case uint:
		return uintToInt64(uint64(v))
	case uint64:
		return uintToInt64(v)
	case uint32:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case float64:
		return floatToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	case string:
		return parseInt64(v)
	case []byte:
		return parseInt64(string(v))
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrNotInteger, val)
	}
}

// ToFloat64 converts numeric types and numeric strings to float64.
func ToFloat64(val any) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int, int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		i, err := ToInt64(v)
		if err != nil {
			// uint64 above MaxInt64 is still a valid float
			if u, ok := v.(uint64); ok {
				return float64(u), nil
			}
			if u, ok := v.(uint); ok {
				return float64(u), nil
			}
			return 0, err
		}
		return float64(i), nil
	case string:
		return parseFloat64(v)
	case []byte:
		return parseFloat64(string(v))
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrNotNumber, val)
	}
}

// ToString converts various types to string.
// Floats use the shortest representation that round-trips.
func ToString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func uintToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d overflows int64", ErrNotInteger, v)
	}
	return int64(v), nil
}

func floatToInt64(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %v", ErrNotInteger, v)
	}
	if v < math.MinInt64 || v >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %v overflows int64", ErrNotInteger, v)
	}
	return int64(v), nil
}

func parseInt64(s string) (int64, error) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotInteger, s)
	}
	return i, nil
}

func parseFloat64(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumber, s)
	}
	return f, nil
}
