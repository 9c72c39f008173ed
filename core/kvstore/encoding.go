package kvstore

import (
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrInvalidItem is returned for items that cannot be addressed or encoded.
var ErrInvalidItem = errors.New("invalid item")

type attrType uint8

const (
	attrInt attrType = iota + 1
	attrFloat
	attrString
)

type wireItem struct {
	PartitionKey string          `msgpack:"pk"`
	RowKey       string          `msgpack:"rk"`
	Attributes   []wireAttribute `msgpack:"a"`
}

type wireAttribute struct {
	Name  string   `msgpack:"n"`
	Type  attrType `msgpack:"t"`
	Int   int64    `msgpack:"i,omitempty"`
	Float float64  `msgpack:"f,omitempty"`
	Text  string   `msgpack:"s,omitempty"`
}

// Marshal encodes an item, keeping the scalar kind of every attribute.
func Marshal(item Item) ([]byte, error) {
	if err := validate(item); err != nil {
		return nil, err
	}

	w := wireItem{
		PartitionKey: item.PartitionKey,
		RowKey:       item.RowKey,
		Attributes:   make([]wireAttribute, 0, len(item.Attributes)),
	}
	for _, a := range item.Attributes {
		wa, err := toWire(a)
		if err != nil {
			return nil, err
		}
		w.Attributes = append(w.Attributes, wa)
	}

	data, err := msgpack.Marshal(&w)
	if err != nil {
		return nil, errors.Wrap(err, "msgpack.Marshal failed")
	}
	return data, nil
}

// Unmarshal decodes an item written by Marshal.
func Unmarshal(data []byte) (Item, error) {
	var w wireItem
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return Item{}, errors.Wrap(err, "msgpack.Unmarshal failed")
	}

	item := Item{PartitionKey: w.PartitionKey, RowKey: w.RowKey}
	for _, wa := range w.Attributes {
		var v any
		switch wa.Type {
		case attrInt:
			v = wa.Int
		case attrFloat:
			v = wa.Float
		case attrString:
			v = wa.Text
		default:
			return Item{}, errors.Wrapf(ErrInvalidItem, "attribute %s has unknown type %d", wa.Name, wa.Type)
		}
		item.Attributes = append(item.Attributes, Attribute{Name: wa.Name, Value: v})
	}
	return item, nil
}

func validate(item Item) error {
	if item.PartitionKey == "" || item.RowKey == "" {
		return errors.Wrap(ErrInvalidItem, "partition and row keys are required")
	}
	return nil
}

func toWire(a Attribute) (wireAttribute, error) {
	wa := wireAttribute{Name: a.Name}
	switch v := a.Value.(type) {
	case int64:
		wa.Type, wa.Int = attrInt, v
	case int:
		wa.Type, wa.Int = attrInt, int64(v)
	case int32:
		wa.Type, wa.Int = attrInt, int64(v)
	case int16:
		wa.Type, wa.Int = attrInt, int64(v)
	case int8:
		wa.Type, wa.Int = attrInt, int64(v)
	case uint32:
		wa.Type, wa.Int = attrInt, int64(v)
	case uint16:
		wa.Type, wa.Int = attrInt, int64(v)
	case uint8:
		wa.Type, wa.Int = attrInt, int64(v)
	case float64:
		wa.Type, wa.Float = attrFloat, v
	case float32:
		wa.Type, wa.Float = attrFloat, float64(v)
	case string:
		wa.Type, wa.Text = attrString, v
	case []byte:
		wa.Type, wa.Text = attrString, string(v)
	default:
		return wa, errors.Wrapf(ErrInvalidItem, "attribute %s has unsupported type %T", a.Name, a.Value)
	}
	return wa, nil
}
