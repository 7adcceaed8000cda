package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
)

// Value is a scalar produced by the AI: a string, a number, a boolean or null.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
}

func StringValue(s string) Value  { return Value{Kind: KindString, Str: s} }
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Num: n} }
func BoolValue(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func NullValue() Value            { return Value{} }

// Native returns the Go value the variant holds (nil for null).
func (v Value) Native() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	default:
		return nil
	}
}

// String renders the value for prompts and logs.
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return "null"
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = NullValue()
	case string:
		*v = StringValue(t)
	case float64:
		*v = NumberValue(t)
	case bool:
		*v = BoolValue(t)
	default:
		return fmt.Errorf("value must be a string, number, boolean or null, got %T", raw)
	}
	return nil
}

func (v Value) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if v.Kind == KindNull {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(v.Native())
}

func (v *Value) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeNull, bson.TypeUndefined:
		*v = NullValue()
	case bson.TypeString:
		*v = StringValue(raw.StringValue())
	case bson.TypeDouble:
		*v = NumberValue(raw.Double())
	case bson.TypeInt32:
		*v = NumberValue(float64(raw.Int32()))
	case bson.TypeInt64:
		*v = NumberValue(float64(raw.Int64()))
	case bson.TypeBoolean:
		*v = BoolValue(raw.Boolean())
	default:
		return fmt.Errorf("unsupported bson type %s for attribute value", t)
	}
	return nil
}

// Attributes is the schema-less "parsedData" blob: dotted paths to scalars.
type Attributes map[string]Value

// FlattenAttributes turns arbitrary decoded JSON into Attributes. Nested
// objects become "a.b" keys and array elements "a.0", so nothing the AI
// returned is lost.
func FlattenAttributes(raw any) Attributes {
	out := Attributes{}
	flattenInto(out, "", raw)
	return out
}

func flattenInto(out Attributes, prefix string, raw any) {
	join := func(key string) string {
		if prefix == "" {
			return key
		}
		return prefix + "." + key
	}

	switch t := raw.(type) {
	case map[string]any:
		if len(t) == 0 && prefix != "" {
			out[prefix] = NullValue()
			return
		}
		for k, child := range t {
			flattenInto(out, join(k), child)
		}
	case []any:
		if len(t) == 0 && prefix != "" {
			out[prefix] = NullValue()
			return
		}
		for i, child := range t {
			flattenInto(out, join(strconv.Itoa(i)), child)
		}
	case string:
		out[prefix] = StringValue(t)
	case float64:
		out[prefix] = NumberValue(t)
	case int:
		out[prefix] = NumberValue(float64(t))
	case bool:
		out[prefix] = BoolValue(t)
	case nil:
		if prefix != "" {
			out[prefix] = NullValue()
		}
	default:
		out[prefix] = StringValue(fmt.Sprint(t))
	}
}

// Keys returns the attribute paths in sorted order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
