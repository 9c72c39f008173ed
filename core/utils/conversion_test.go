package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt64(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    int64
		wantErr bool
	}{
		{"int", 5, 5, false},
		{"int8", int8(-3), -3, false},
		{"uint32", uint32(7), 7, false},
		{"uint64 max int", uint64(math.MaxInt64), math.MaxInt64, false},
		{"uint64 overflow", uint64(math.MaxUint64), 0, true},
		{"integral float", 3.0, 3, false},
		{"fractional float", 3.7, 0, true},
		{"NaN", math.NaN(), 0, true},
		{"string", " 42 ", 42, false},
		{"bytes", []byte("-9"), -9, false},
		{"non numeric string", "abc", 0, true},
		{"float string", "3.0", 0, true},
		{"bool", true, 0, true},
		{"nil", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToInt64(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotInteger)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToFloat64(t *testing.T) {
	f, err := ToFloat64(30)
	assert.NoError(t, err)
	assert.Equal(t, 30.0, f)

	f, err = ToFloat64("2.5")
	assert.NoError(t, err)
	assert.Equal(t, 2.5, f)

	f, err = ToFloat64(uint64(math.MaxUint64))
	assert.NoError(t, err)
	assert.Equal(t, float64(math.MaxUint64), f)

	_, err = ToFloat64("abc")
	assert.ErrorIs(t, err, ErrNotNumber)

	_, err = ToFloat64(struct{}{})
	assert.ErrorIs(t, err, ErrNotNumber)
}

func TestToString(t *testing.T) {
	assert.Equal(t, "abc", ToString("abc"))
	assert.Equal(t, "abc", ToString([]byte("abc")))
	assert.Equal(t, "30", ToString(int64(30)))
	assert.Equal(t, "30.5", ToString(30.5))
	assert.Equal(t, "", ToString(nil))
}
