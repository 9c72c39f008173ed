package kvstore

import "strconv"

const (
	// PartitionKeyName is the attribute name of the partition key.
	PartitionKeyName = "PartitionKey"
	// RowKeyName is the attribute name of the row key.
	RowKeyName = "RowKey"
)

// Attribute is a named scalar value of an item.
type Attribute struct {
	Name  string
	Value any
}

// Item is the native record shape of the key-value store.
type Item struct {
	PartitionKey string
	RowKey       string
	Attributes   []Attribute
}

// Properties returns every attribute of the item with the partition key first and
// the row key second, followed by the remaining attributes in stored order.
func (i Item) Properties() []Attribute {
	props := make([]Attribute, 0, len(i.Attributes)+2)
	props = append(props,
		Attribute{Name: PartitionKeyName, Value: i.PartitionKey},
		Attribute{Name: RowKeyName, Value: i.RowKey},
	)
	return append(props, i.Attributes...)
}

// Get returns the value of the named attribute.
func (i Item) Get(name string) (any, bool) {
	switch name {
	case PartitionKeyName:
		return i.PartitionKey, true
	case RowKeyName:
		return i.RowKey, true
	}
	for _, a := range i.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// itemKey encodes the partition and row keys into one unambiguous string.
func itemKey(partitionKey, rowKey string) string {
	return strconv.Itoa(len(partitionKey)) + ":" + partitionKey + rowKey
}
