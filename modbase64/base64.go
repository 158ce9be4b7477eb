package modbase64

import (
	"bytes"
	"encoding/base64"
	"fmt"
)

// Options configures the base64 modulator.
type Options struct {
	// URLSafe selects the URL-safe alphabet instead of the standard one.
	URLSafe bool
}

// Modulator encodes data as base64 text on Encode and reverses it on Decode.
type Modulator struct {
	enc *base64.Encoding
}

// New creates a base64 modulator.
func New(opts Options) *Modulator {
	enc := base64.StdEncoding
	if opts.URLSafe {
		enc = base64.URLEncoding
	}
	return &Modulator{enc: enc}
}

// Name returns the modulator identifier.
func (m *Modulator) Name() string {
	return "base64"
}

// Encode returns the base64 text of data.
func (m *Modulator) Encode(data []byte) ([]byte, error) {
	buf := make([]byte, m.enc.EncodedLen(len(data)))
	m.enc.Encode(buf, data)
	return buf, nil
}

// Decode parses base64 text. Surrounding whitespace (e.g. a trailing
// newline added by an editor) is ignored.
func (m *Modulator) Decode(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	buf := make([]byte, m.enc.DecodedLen(len(data)))
	n, err := m.enc.Decode(buf, data)
	if err != nil {
		return nil, fmt.Errorf("modbase64: %w", err)
	}
	return buf[:n], nil
}
