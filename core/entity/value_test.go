package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueOf(t *testing.T) {
	v, err := ValueOf(int32(4))
	assert.NoError(t, err)
	assert.Equal(t, KindInteger, v.Kind())
	assert.Equal(t, int64(4), v.Int())

	v, err = ValueOf(float32(1.5))
	assert.NoError(t, err)
	assert.Equal(t, KindFloat, v.Kind())
	assert.Equal(t, 1.5, v.Float())

	v, err = ValueOf([]byte("abc"))
	assert.NoError(t, err)
	assert.Equal(t, KindString, v.Kind())
	assert.Equal(t, "abc", v.Text())

	_, err = ValueOf(uint64(math.MaxUint64))
	assert.ErrorIs(t, err, ErrUnsupportedValue)

	_, err = ValueOf(nil)
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestValue_EqualAndInterface(t *testing.T) {
	assert.True(t, IntValue(1).Equal(IntValue(1)))
	assert.False(t, IntValue(1).Equal(FloatValue(1)))
	assert.True(t, FloatValue(math.NaN()).Equal(FloatValue(math.NaN())))

	assert.Equal(t, int64(1), IntValue(1).Interface())
	assert.Equal(t, 2.5, FloatValue(2.5).Interface())
	assert.Equal(t, "x", StringValue("x").Interface())
	assert.Nil(t, Value{}.Interface())

	assert.Equal(t, "integer", KindInteger.String())
	assert.Equal(t, `"x"`, StringValue("x").String())
}
