package jsonsettings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Object is a string-keyed map of Values that remembers insertion order.
// The zero Object is empty and ready to use.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.values[key]
	return ok
}

// Get returns the value for key, or Missing.
func (o *Object) Get(key string) Value {
	if o == nil {
		return Missing
	}
	v, ok := o.values[key]
	if !ok {
		return Missing
	}
	return v
}

// Set inserts or replaces key. Replacing keeps the original position.
// Setting Missing deletes the key.
func (o *Object) Set(key string, v Value) {
	if v.IsMissing() {
		o.Delete(key)
		return
	}
	if o.values == nil {
		o.values = make(map[string]Value)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	if o == nil {
		return false
	}
	if _, ok := o.values[key]; !ok {
		return false
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Clone returns a deep copy of o.
func (o *Object) Clone() *Object {
	c := NewObject()
	if o == nil {
		return c
	}
	for _, k := range o.keys {
		c.Set(k, cloneValue(o.values[k]))
	}
	return c
}

func cloneValue(v Value) Value {
	switch v.kind {
	case KindObject:
		return ObjectValue(v.obj.Clone())
	case KindArray:
		items := make([]Value, len(v.arr))
		for i, item := range v.arr {
			items[i] = cloneValue(item)
		}
		return ArrayValue(items...)
	default:
		return v
	}
}

// Map returns the object as plain Go data.
func (o *Object) Map() map[string]any {
	m, _ := ObjectValue(o).Interface().(map[string]any)
	return m
}

// MarshalJSON encodes o with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if o != nil {
		for i, k := range o.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')

			data, err := o.values[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the content of o with a JSON object, keeping file order.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := parseJSONValue(data)
	if err != nil {
		return err
	}
	if v.kind != KindObject {
		return fmt.Errorf("jsonsettings: expected JSON object, got %s", v.kind)
	}
	*o = *v.obj
	return nil
}

// MarshalYAML encodes o as a YAML mapping with keys in insertion order.
func (o *Object) MarshalYAML() (any, error) {
	return yamlNode(ObjectValue(o)), nil
}

// UnmarshalYAML replaces the content of o with a YAML mapping, keeping file order.
func (o *Object) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	v, err := valueFromYAML(node)
	if err != nil {
		return err
	}
	if v.kind != KindObject {
		return fmt.Errorf("jsonsettings: expected YAML mapping, got %s", v.kind)
	}
	*o = *v.obj
	return nil
}

// MarshalYAML encodes v as a YAML node.
func (v Value) MarshalYAML() (any, error) {
	return yamlNode(v), nil
}

// UnmarshalYAML decodes any YAML node into v.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := valueFromYAML(node)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func yamlNode(v Value) *yaml.Node {
	switch v.kind {
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.str}
	case KindNumber:
		if i, ok := v.AsInt(); ok {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(i, 10)}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v.num, 'g', -1, 64)}
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	case KindObject:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range v.obj.keys {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				yamlNode(v.obj.values[k]),
			)
		}
		return node
	case KindArray:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.arr {
			node.Content = append(node.Content, yamlNode(item))
		}
		return node
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func valueFromYAML(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return valueFromYAML(node.Content[0])
	case yaml.AliasNode:
		return valueFromYAML(node.Alias)
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			item, err := valueFromYAML(node.Content[i+1])
			if err != nil {
				return Missing, err
			}
			obj.Set(node.Content[i].Value, item)
		}
		return ObjectValue(obj), nil
	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := valueFromYAML(child)
			if err != nil {
				return Missing, err
			}
			items = append(items, item)
		}
		return ArrayValue(items...), nil
	default:
		var scalar any
		if err := node.Decode(&scalar); err != nil {
			return Missing, fmt.Errorf("jsonsettings: line %d: %w", node.Line, err)
		}
		return ValueOf(scalar)
	}
}

// objectFromMap converts decoded data with no inherent key order. Keys are sorted.
func objectFromMap(m map[string]any) (*Object, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	obj := NewObject()
	for _, k := range keys {
		v, err := ValueOf(m[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		obj.Set(k, v)
	}
	return obj, nil
}

// tomlData converts o for the TOML encoder. TOML has no null, so null values
// are omitted; integral numbers become int64.
func tomlData(o *Object) map[string]any {
	m := make(map[string]any, o.Len())
	if o == nil {
		return m
	}
	for _, k := range o.keys {
		if v, ok := tomlValue(o.values[k]); ok {
			m[k] = v
		}
	}
	return m
}

func tomlValue(v Value) (any, bool) {
	switch v.kind {
	case KindString:
		return v.str, true
	case KindNumber:
		if i, ok := v.AsInt(); ok {
			return i, true
		}
		if math.IsInf(v.num, 0) || math.IsNaN(v.num) {
			return nil, false
		}
		return v.num, true
	case KindBool:
		return v.b, true
	case KindObject:
		return tomlData(v.obj), true
	case KindArray:
		items := make([]any, 0, len(v.arr))
		for _, item := range v.arr {
			if x, ok := tomlValue(item); ok {
				items = append(items, x)
			}
		}
		return items, true
	default:
		return nil, false
	}
}
