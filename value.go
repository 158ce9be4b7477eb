package jsonsettings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the type held by a Value.
type Kind uint8

// Value kinds. KindMissing marks a key that is not present, which is
// different from a key holding an explicit null.
const (
	KindMissing Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "missing"
	}
}

// ErrMissingValue is returned when decoding a Value that is Missing.
var ErrMissingValue = errors.New("jsonsettings: value is missing")

// Value is a JSON value: string, number, boolean, object, array or null.
// The zero Value is Missing.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	obj  *Object
	arr  []Value
}

// Missing is returned for keys that are not present.
var Missing = Value{}

// Null returns an explicit null value.
func Null() Value { return Value{kind: KindNull} }

// StringValue wraps s.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue wraps f.
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }

// BoolValue wraps b.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// ObjectValue wraps o. A nil o becomes an empty object.
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

// ArrayValue wraps items.
func ArrayValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// ValueOf converts a Go value to a Value.
// Primitives map directly; structs, maps and slices go through their JSON encoding.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return cloneValue(x), nil
	case *Value:
		if x == nil {
			return Null(), nil
		}
		return cloneValue(*x), nil
	case *Object:
		if x == nil {
			return Null(), nil
		}
		return ObjectValue(x.Clone()), nil
	case string:
		return StringValue(x), nil
	case bool:
		return BoolValue(x), nil
	case int:
		return NumberValue(float64(x)), nil
	case int8:
		return NumberValue(float64(x)), nil
	case int16:
		return NumberValue(float64(x)), nil
	case int32:
		return NumberValue(float64(x)), nil
	case int64:
		return NumberValue(float64(x)), nil
	case uint:
		return NumberValue(float64(x)), nil
	case uint8:
		return NumberValue(float64(x)), nil
	case uint16:
		return NumberValue(float64(x)), nil
	case uint32:
		return NumberValue(float64(x)), nil
	case uint64:
		return NumberValue(float64(x)), nil
	case float32:
		return numberOf(float64(x))
	case float64:
		return numberOf(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Missing, fmt.Errorf("jsonsettings: invalid number %q: %w", x, err)
		}
		return NumberValue(f), nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return Missing, fmt.Errorf("jsonsettings: convert %T: %w", v, err)
	}
	return parseJSONValue(data)
}

func numberOf(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing, fmt.Errorf("jsonsettings: unsupported number %v", f)
	}
	return NumberValue(f), nil
}

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v marks an absent key.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// IsNull reports whether v is an explicit null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsFloat returns the number held by v.
func (v Value) AsFloat() (float64, bool) { return v.num, v.kind == KindNumber }

// AsInt returns the number held by v if it is integral.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindNumber || v.num != math.Trunc(v.num) || math.Abs(v.num) > 1<<53 {
		return 0, false
	}
	return int64(v.num), true
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsObject returns the object held by v. The object is shared with v, not copied.
func (v Value) AsObject() (*Object, bool) { return v.obj, v.kind == KindObject }

// AsArray returns the items held by v. The slice is shared with v, not copied.
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }

// Interface returns v as plain Go data: string, float64, bool, nil,
// map[string]any or []any. Missing also returns nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindObject:
		m := make(map[string]any, v.obj.Len())
		for _, k := range v.obj.keys {
			m[k] = v.obj.values[k].Interface()
		}
		return m
	case KindArray:
		items := make([]any, len(v.arr))
		for i, item := range v.arr {
			items[i] = item.Interface()
		}
		return items
	default:
		return nil
	}
}

// Decode stores v into out (a pointer) through its JSON encoding.
func (v Value) Decode(out any) error {
	if v.kind == KindMissing {
		return ErrMissingValue
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Equal reports whether v and other hold the same data. Object key order is ignored.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	case KindObject:
		if v.obj.Len() != other.obj.Len() {
			return false
		}
		for _, k := range v.obj.keys {
			ov, ok := other.obj.values[k]
			if !ok || !v.obj.values[k].Equal(ov) {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders v as compact JSON. Missing renders as "<missing>".
func (v Value) String() string {
	if v.kind == KindMissing {
		return "<missing>"
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid: %v>", err)
	}
	return string(data)
}

// MarshalJSON encodes v. Missing encodes as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return strconv.AppendBool(nil, v.b), nil
	case KindObject:
		return v.obj.MarshalJSON()
	case KindArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes any JSON value into v, keeping object key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := parseJSONValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// parseJSONValue decodes a single JSON document.
func parseJSONValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSONValue(dec)
	if err != nil {
		return Missing, err
	}
	if dec.More() {
		return Missing, errors.New("jsonsettings: unexpected data after JSON value")
	}
	return v, nil
}

// decodeJSONValue reads one value from the token stream.
func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Missing, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Missing, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Missing, fmt.Errorf("jsonsettings: unexpected object key %v", keyTok)
				}
				item, err := decodeJSONValue(dec)
				if err != nil {
					return Missing, err
				}
				obj.Set(key, item)
			}
			if _, err := dec.Token(); err != nil {
				return Missing, err
			}
			return ObjectValue(obj), nil
		case '[':
			items := []Value{}
			for dec.More() {
				item, err := decodeJSONValue(dec)
				if err != nil {
					return Missing, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Missing, err
			}
			return ArrayValue(items...), nil
		default:
			return Missing, fmt.Errorf("jsonsettings: unexpected delimiter %v", t)
		}
	case string:
		return StringValue(t), nil
	case json.Number:
		return ValueOf(t)
	case bool:
		return BoolValue(t), nil
	case nil:
		return Null(), nil
	default:
		return Missing, fmt.Errorf("jsonsettings: unexpected token %v", tok)
	}
}
