package kvstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoding(t *testing.T) {
	t.Run("Keeps Scalar Kinds", func(t *testing.T) {
		item := Item{
			PartitionKey: "users",
			RowKey:       "1",
			Attributes: []Attribute{
				{Name: "age", Value: 30},
				{Name: "name", Value: "Alice"},
				{Name: "score", Value: 2.5},
				{Name: "tag", Value: []byte("x")},
			},
		}

		data, err := Marshal(item)
		require.NoError(t, err)

		decoded, err := Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, "users", decoded.PartitionKey)
		assert.Equal(t, "1", decoded.RowKey)
		assert.Equal(t, []Attribute{
			{Name: "age", Value: int64(30)},
			{Name: "name", Value: "Alice"},
			{Name: "score", Value: 2.5},
			{Name: "tag", Value: "x"},
		}, decoded.Attributes)
	})

	t.Run("Zero Values Survive", func(t *testing.T) {
		item := Item{PartitionKey: "t", RowKey: "0", Attributes: []Attribute{
			{Name: "n", Value: int64(0)},
			{Name: "f", Value: 0.0},
			{Name: "s", Value: ""},
		}}
		data, err := Marshal(item)
		require.NoError(t, err)
		decoded, err := Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, item.Attributes, decoded.Attributes)
	})

	t.Run("Rejects Missing Keys", func(t *testing.T) {
		_, err := Marshal(Item{PartitionKey: "users"})
		assert.True(t, errors.Is(err, ErrInvalidItem))
	})

	t.Run("Rejects Unsupported Values", func(t *testing.T) {
		_, err := Marshal(Item{PartitionKey: "users", RowKey: "1", Attributes: []Attribute{{Name: "ok", Value: true}}})
		assert.True(t, errors.Is(err, ErrInvalidItem))
	})

	t.Run("Rejects Garbage", func(t *testing.T) {
		_, err := Unmarshal([]byte{0xc1})
		assert.Error(t, err)
	})
}

func TestItem(t *testing.T) {
	item := Item{PartitionKey: "users", RowKey: "7", Attributes: []Attribute{{Name: "name", Value: "Bob"}}}

	props := item.Properties()
	require.Len(t, props, 3)
	assert.Equal(t, Attribute{Name: PartitionKeyName, Value: "users"}, props[0])
	assert.Equal(t, Attribute{Name: RowKeyName, Value: "7"}, props[1])

	v, ok := item.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "Bob", v)
	v, ok = item.Get(RowKeyName)
	assert.True(t, ok)
	assert.Equal(t, "7", v)
	_, ok = item.Get("missing")
	assert.False(t, ok)

	assert.NotEqual(t, itemKey("ab", "c"), itemKey("a", "bc"))
}
