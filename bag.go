package jsonsettings

import "fmt"

// Bag is a settings file holding arbitrary string-keyed values.
// Reads of absent keys return Missing, never an error.
type Bag struct {
	*Settings[Object]
}

// LoadBag reads a bag from path, or starts an empty one if the file does not exist.
func LoadBag(path string, configure ...func(*Builder[Object])) (*Bag, error) {
	s, err := Load[Object](path, configure...)
	if err != nil {
		return nil, err
	}
	return AsBag(s), nil
}

// ConfigureBag starts building a bag. Wrap the result of LoadNow with AsBag.
func ConfigureBag(path string) *Builder[Object] {
	return Configure[Object](path)
}

// AsBag wraps loaded object settings with key accessors.
func AsBag(s *Settings[Object]) *Bag {
	return &Bag{Settings: s}
}

// EnableAutosave makes every Set and Delete save immediately.
func (b *Bag) EnableAutosave() *Bag {
	b.Settings.EnableAutosave()
	return b
}

// DisableAutosave stops automatic saves.
func (b *Bag) DisableAutosave() *Bag {
	b.Settings.DisableAutosave()
	return b
}

// Get returns a copy of the value stored under key, or Missing.
// Changing a returned object or array does not change the bag; use Set.
func (b *Bag) Get(key string) Value {
	return cloneValue(b.Value().Get(key))
}

// Has reports whether key is present (including keys holding null).
func (b *Bag) Has(key string) bool {
	return b.Value().Has(key)
}

// Keys returns the keys in insertion order.
func (b *Bag) Keys() []string {
	return b.Value().Keys()
}

// Len returns the number of keys.
func (b *Bag) Len() int {
	return b.Value().Len()
}

// Set stores value under key, replacing any previous value.
// value may be a Value, a primitive, or anything encoding/json can marshal.
// Objects and arrays are copied, so later changes by the caller do not reach the bag.
// With autosave enabled the bag is saved; a failed save keeps the new value in memory.
func (b *Bag) Set(key string, value any) error {
	v, err := ValueOf(value)
	if err != nil {
		return newError("set", b.Path(), ErrSerialization, fmt.Errorf("key %q: %w", key, err))
	}
	if v.IsMissing() {
		return newError("set", b.Path(), ErrConfiguration, fmt.Errorf("key %q: cannot store Missing, use Delete", key))
	}

	b.Value().Set(key, v)
	return b.changed()
}

// Delete removes key. Autosaves only when the key existed.
func (b *Bag) Delete(key string) (bool, error) {
	if !b.Value().Delete(key) {
		return false, nil
	}
	return true, b.changed()
}

// String returns the string stored under key.
func (b *Bag) String(key string) (string, bool) {
	return b.Get(key).AsString()
}

// Float returns the number stored under key.
func (b *Bag) Float(key string) (float64, bool) {
	return b.Get(key).AsFloat()
}

// Int returns the integral number stored under key.
func (b *Bag) Int(key string) (int64, bool) {
	return b.Get(key).AsInt()
}

// Bool returns the boolean stored under key.
func (b *Bag) Bool(key string) (bool, bool) {
	return b.Get(key).AsBool()
}

// Decode stores the value under key into out (a pointer), e.g. a struct.
// Returns ErrMissingValue if key is absent.
func (b *Bag) Decode(key string, out any) error {
	if err := b.Get(key).Decode(out); err != nil {
		return fmt.Errorf("jsonsettings: decode %q: %w", key, err)
	}
	return nil
}
