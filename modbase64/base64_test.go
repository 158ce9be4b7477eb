package modbase64

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModulator_RoundTrip(t *testing.T) {
	for _, opts := range []Options{{}, {URLSafe: true}} {
		m := New(opts)
		for _, input := range [][]byte{{}, []byte("a"), []byte("ab"), {0xfb, 0xff, 0xfe, 0x00}} {
			enc, err := m.Encode(input)
			require.NoError(t, err)

			dec, err := m.Decode(enc)
			require.NoError(t, err)
			assert.Equal(t, input, dec)
		}
	}
}

func TestModulator_Encode(t *testing.T) {
	enc, err := New(Options{}).Encode([]byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, "eyJhIjoxfQ==", string(enc))
}

func TestModulator_URLSafeAlphabet(t *testing.T) {
	enc, err := New(Options{URLSafe: true}).Encode([]byte{0xfb, 0xff})
	require.NoError(t, err)
	assert.Equal(t, "-_8=", string(enc))
}

func TestModulator_DecodeTrimsWhitespace(t *testing.T) {
	dec, err := New(Options{}).Decode([]byte("eyJhIjoxfQ==\n"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(dec))
}

func TestModulator_DecodeInvalid(t *testing.T) {
	_, err := New(Options{}).Decode([]byte("not base64!"))
	assert.Error(t, err)
}
