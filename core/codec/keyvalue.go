package codec

import (
	"strconv"

	"tablesync/core/entity"
	"tablesync/core/kvstore"
)

// FromKeyValueItem decodes an item: the partition key is the table, the row key
// is the id and the attributes become fields unchanged.
func FromKeyValueItem(item kvstore.Item) (entity.Entity, error) {
	fields := make([]entity.Field, 0, len(item.Attributes))
	for _, a := range item.Attributes {
		v, err := entity.ValueOf(a.Value)
		if err != nil {
			return entity.Entity{}, &Error{Op: "decode", Table: item.PartitionKey, ID: item.RowKey, Column: a.Name, Err: err}
		}
		fields = append(fields, entity.Field{Name: a.Name, Value: v})
	}

	e, err := entity.NewFromFields(item.PartitionKey, item.RowKey, fields)
	if err != nil {
		return entity.Entity{}, &Error{Op: "decode", Table: item.PartitionKey, ID: item.RowKey, Err: err}
	}
	return e, nil
}

// ToKeyValueItem encodes an entity. Properties of the result yield the partition
// key, then the row key, then the fields in canonical order.
func ToKeyValueItem(e entity.Entity) kvstore.Item {
	fields := e.Fields()
	item := kvstore.Item{
		PartitionKey: e.Table(),
		RowKey:       strconv.FormatInt(e.ID(), 10),
	}
	if len(fields) > 0 {
		item.Attributes = make([]kvstore.Attribute, 0, len(fields))
	}
	for _, f := range fields {
		item.Attributes = append(item.Attributes, kvstore.Attribute{Name: f.Name, Value: f.Value.Interface()})
	}
	return item
}
