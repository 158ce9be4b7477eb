package jsonsettings

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azhovan/jsonsettings/modbase64"
	"github.com/Azhovan/jsonsettings/modcrypt"
)

var testCryptOpts = modcrypt.Options{Cost: modcrypt.MinCost}

// reverseModulator reverses byte order, a cheap self-inverse transform.
var reverseModulator = ModulatorFuncs{
	ID: "reverse",
	EncodeFunc: func(data []byte) ([]byte, error) {
		out := make([]byte, len(data))
		for i, b := range data {
			out[len(data)-1-i] = b
		}
		return out, nil
	},
	DecodeFunc: func(data []byte) ([]byte, error) {
		out := make([]byte, len(data))
		for i, b := range data {
			out[len(data)-1-i] = b
		}
		return out, nil
	},
}

func TestModulators_InverseLaw(t *testing.T) {
	modulators := []Modulator{
		modbase64.New(modbase64.Options{}),
		modbase64.New(modbase64.Options{URLSafe: true}),
		modcrypt.New("SuperPassword", testCryptOpts),
		reverseModulator,
	}
	inputs := [][]byte{
		{},
		[]byte("{}"),
		[]byte(`{"theme":"dark","fontSize":12}`),
		{0x00, 0x01, 0xfe, 0xff},
	}

	for _, m := range modulators {
		for _, input := range inputs {
			enc, err := m.Encode(input)
			require.NoError(t, err, m.Name())
			dec, err := m.Decode(enc)
			require.NoError(t, err, m.Name())
			assert.True(t, bytes.Equal(input, dec), "%s: decode(encode(%q)) = %q", m.Name(), input, dec)
		}
	}
}

func TestChain_EmptyIsIdentity(t *testing.T) {
	var c Chain
	data := []byte("unchanged")

	out, err := c.Apply(data)
	require.NoError(t, err)
	assert.Equal(t, data, out)

	out, err = c.Reverse(data)
	require.NoError(t, err)
	assert.Equal(t, data, out)
	assert.Equal(t, 0, c.Len())
}

func TestChain_RoundTrip(t *testing.T) {
	c := NewChain(
		modbase64.New(modbase64.Options{}),
		modcrypt.New("pw", testCryptOpts),
		reverseModulator,
	)
	assert.Equal(t, []string{"base64", "encryption", "reverse"}, c.Names())

	enc, err := c.Apply([]byte(`{"a":1}`))
	require.NoError(t, err)

	dec, err := c.Reverse(enc)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(dec))
}

func TestChain_OrderMatters(t *testing.T) {
	b64 := modbase64.New(modbase64.Options{})
	crypt := modcrypt.New("pw", testCryptOpts)

	enc, err := NewChain(b64, crypt).Apply([]byte(`{"a":1}`))
	require.NoError(t, err)

	// Reverse of [A, B] decodes B first, then A
	dec, err := NewChain(b64, crypt).Reverse(enc)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(dec))

	// Undoing in the forward order fails: ciphertext is not base64
	_, err = b64.Decode(enc)
	assert.Error(t, err)

	// Swapped chain reverses base64 first as well
	_, err = NewChain(crypt, b64).Reverse(enc)
	assert.Error(t, err)
}

func TestChain_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	var calls []string

	record := func(name string, fail bool) Modulator {
		return ModulatorFuncs{
			ID: name,
			EncodeFunc: func(data []byte) ([]byte, error) {
				calls = append(calls, "encode "+name)
				if fail {
					return nil, boom
				}
				return data, nil
			},
			DecodeFunc: func(data []byte) ([]byte, error) {
				calls = append(calls, "decode "+name)
				if fail {
					return nil, boom
				}
				return data, nil
			},
		}
	}

	c := NewChain(record("a", false), record("b", true), record("c", false))

	_, err := c.Apply([]byte("x"))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "encode b")
	assert.Equal(t, []string{"encode a", "encode b"}, calls)

	calls = nil
	_, err = c.Reverse([]byte("x"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"decode c", "decode b"}, calls)
}

func TestNewChain_CopiesInput(t *testing.T) {
	mods := []Modulator{reverseModulator}
	c := NewChain(mods...)
	mods[0] = modbase64.New(modbase64.Options{})

	assert.Equal(t, []string{"reverse"}, c.Names())
}
