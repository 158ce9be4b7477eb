package jsonsettings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azhovan/jsonsettings/modcrypt"
)

func TestBag_SetSaveReload(t *testing.T) {
	path := tempSettingsPath(t)

	bag, err := LoadBag(path)
	require.NoError(t, err)
	assert.False(t, bag.Persisted())
	assert.Equal(t, 0, bag.Len())

	require.NoError(t, bag.Set("key", "value"))
	require.NoError(t, bag.Set("key2", 1))
	require.NoError(t, bag.Set("key3", smallClass{Name: "Small", Value: "Class"}))
	require.NoError(t, bag.Save())

	loaded, err := LoadBag(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"key", "key2", "key3"}, loaded.Keys())

	s, ok := loaded.String("key")
	assert.True(t, ok)
	assert.Equal(t, "value", s)

	n, ok := loaded.Int("key2")
	assert.True(t, ok)
	assert.Equal(t, int64(1), n)

	var small smallClass
	require.NoError(t, loaded.Decode("key3", &small))
	assert.Equal(t, smallClass{Name: "Small", Value: "Class"}, small)
	assert.Equal(t, KindObject, loaded.Get("key3").Kind())
}

func TestBag_MissingVersusNull(t *testing.T) {
	bag, err := LoadBag(tempSettingsPath(t))
	require.NoError(t, err)

	require.NoError(t, bag.Set("nothing", nil))

	assert.True(t, bag.Get("absent").IsMissing())
	assert.False(t, bag.Has("absent"))

	assert.True(t, bag.Get("nothing").IsNull())
	assert.False(t, bag.Get("nothing").IsMissing())
	assert.True(t, bag.Has("nothing"))

	_, ok := bag.String("absent")
	assert.False(t, ok)

	var out string
	assert.ErrorIs(t, bag.Decode("absent", &out), ErrMissingValue)
}

func TestBag_SetRejectsMissingAndInvalid(t *testing.T) {
	bag, err := LoadBag(tempSettingsPath(t))
	require.NoError(t, err)

	err = bag.Set("k", Missing)
	assert.ErrorIs(t, err, ErrConfiguration)

	err = bag.Set("k", make(chan int))
	assert.ErrorIs(t, err, ErrSerialization)

	var settingsErr *Error
	require.True(t, errors.As(err, &settingsErr))
	assert.Equal(t, "set", settingsErr.Op)
	assert.False(t, bag.Has("k"))
}

func TestBag_SetCopiesCallerData(t *testing.T) {
	path := tempSettingsPath(t)

	bag, err := LoadBag(path)
	require.NoError(t, err)
	bag.EnableAutosave()

	nested := NewObject()
	nested.Set("x", NumberValue(1))
	require.NoError(t, bag.Set("nested", ObjectValue(nested)))

	items := []Value{StringValue("a")}
	list := ArrayValue(items...)
	require.NoError(t, bag.Set("list", &list))

	// Changes made by the caller after Set stay outside the bag
	nested.Set("x", NumberValue(2))
	arr, _ := list.AsArray()
	arr[0] = StringValue("changed")

	// Neither do changes through values returned by Get
	got, ok := bag.Get("nested").AsObject()
	require.True(t, ok)
	got.Set("y", StringValue("unsaved"))

	stored, ok := bag.Get("nested").AsObject()
	require.True(t, ok)
	x, _ := stored.Get("x").AsInt()
	assert.Equal(t, int64(1), x)
	assert.False(t, stored.Has("y"))

	other, err := LoadBag(path)
	require.NoError(t, err)
	assert.True(t, bag.Value().Get("nested").Equal(other.Value().Get("nested")))
	assert.True(t, bag.Value().Get("list").Equal(other.Value().Get("list")))

	first, _ := other.Get("list").AsArray()
	require.Len(t, first, 1)
	assert.True(t, first[0].Equal(StringValue("a")))
}

func TestBag_TypedAccessorsMismatch(t *testing.T) {
	bag, err := LoadBag(tempSettingsPath(t))
	require.NoError(t, err)

	require.NoError(t, bag.Set("ratio", 1.5))
	require.NoError(t, bag.Set("on", true))

	_, ok := bag.Int("ratio")
	assert.False(t, ok)
	f, ok := bag.Float("ratio")
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)

	b, ok := bag.Bool("on")
	assert.True(t, ok)
	assert.True(t, b)
	_, ok = bag.String("on")
	assert.False(t, ok)
}

func TestBag_AutosaveVisibleToIndependentLoad(t *testing.T) {
	path := tempSettingsPath(t)

	bag, err := LoadBag(path)
	require.NoError(t, err)
	bag.EnableAutosave()

	require.NoError(t, bag.Set("counter", 1))

	other, err := LoadBag(path)
	require.NoError(t, err)
	n, ok := other.Int("counter")
	require.True(t, ok)
	assert.Equal(t, int64(1), n)

	existed, err := bag.Delete("counter")
	require.NoError(t, err)
	assert.True(t, existed)

	require.NoError(t, other.Reload())
	assert.False(t, other.Has("counter"))

	existed, err = bag.Delete("counter")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestBag_AutosaveFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	bag, err := LoadBag(filepath.Join(dir, "bag.json"))
	require.NoError(t, err)
	require.NoError(t, bag.Set("kept", "before"))
	require.NoError(t, bag.SetPath(filepath.Join(blocker, "bag.json")))

	var reported []error
	bag.EnableAutosave().OnAutosaveError(func(err error) { reported = append(reported, err) })

	err = bag.Set("theme", "dark")
	assert.ErrorIs(t, err, ErrAutosave)
	assert.ErrorIs(t, err, ErrFileAccess)
	theme, ok := bag.String("theme")
	assert.True(t, ok)
	assert.Equal(t, "dark", theme)

	existed, err := bag.Delete("kept")
	assert.True(t, existed)
	assert.ErrorIs(t, err, ErrAutosave)
	assert.False(t, bag.Has("kept"))

	require.Len(t, reported, 2)
	for _, e := range reported {
		assert.ErrorIs(t, e, ErrAutosave)
	}
}

func TestBag_DisableAutosave(t *testing.T) {
	path := tempSettingsPath(t)

	bag, err := LoadBag(path)
	require.NoError(t, err)
	require.NoError(t, bag.EnableAutosave().Set("a", 1))

	require.NoError(t, bag.DisableAutosave().Set("b", 2))

	other, err := LoadBag(path)
	require.NoError(t, err)
	assert.True(t, other.Has("a"))
	assert.False(t, other.Has("b"))
}

func TestBag_Encrypted(t *testing.T) {
	path := tempSettingsPath(t)
	configure := func(b *Builder[Object]) {
		b.WithBase64().WithEncryption("SuperPassword").WithEncryptionCost(modcrypt.MinCost)
	}

	bag, err := LoadBag(path, configure)
	require.NoError(t, err)
	require.NoError(t, bag.Set("token", "abc123"))
	require.NoError(t, bag.Save())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "abc123")

	loaded, err := LoadBag(path, configure)
	require.NoError(t, err)
	token, _ := loaded.String("token")
	assert.Equal(t, "abc123", token)

	_, err = LoadBag(path, func(b *Builder[Object]) { b.WithBase64().WithEncryption("nope") })
	assert.ErrorIs(t, err, ErrDecode)
}

func TestBag_ConfigureBag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s, err := ConfigureBag(path).WithAutosave().LoadNow()
	require.NoError(t, err)
	bag := AsBag(s)

	require.NoError(t, bag.Set("zeta", "z"))
	require.NoError(t, bag.Set("alpha", "a"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(raw), "zeta"), strings.Index(string(raw), "alpha"))

	loaded, err := LoadBag(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha"}, loaded.Keys())
}

func TestBag_NonObjectFile(t *testing.T) {
	path := tempSettingsPath(t)
	require.NoError(t, os.WriteFile(path, []byte(`[1, 2, 3]`), 0600))

	_, err := LoadBag(path)
	assert.ErrorIs(t, err, ErrDeserialization)
}
