package jsonsettings

import "fmt"

// Modulator is a reversible byte transform applied around serialization.
// Implementations must satisfy Decode(Encode(x)) == x for every x, including empty input.
type Modulator interface {
	// Encode transforms serialized bytes on the way to disk.
	Encode(data []byte) ([]byte, error)

	// Decode reverses Encode on the way back from disk.
	Decode(data []byte) ([]byte, error)

	// Name identifies the modulator in error messages.
	Name() string
}

// Chain is an ordered list of modulators.
// Apply runs them in order, Reverse runs them backwards. The zero Chain is the identity.
type Chain struct {
	modulators []Modulator
}

// NewChain creates a chain with the given encode order.
func NewChain(modulators ...Modulator) Chain {
	c := Chain{modulators: make([]Modulator, len(modulators))}
	copy(c.modulators, modulators)
	return c
}

// Len returns the number of modulators in the chain.
func (c Chain) Len() int {
	return len(c.modulators)
}

// Names returns modulator names in encode order.
func (c Chain) Names() []string {
	names := make([]string, len(c.modulators))
	for i, m := range c.modulators {
		names[i] = m.Name()
	}
	return names
}

// Apply encodes data through every modulator, first to last.
// The first failure aborts the chain.
func (c Chain) Apply(data []byte) ([]byte, error) {
	for _, m := range c.modulators {
		out, err := m.Encode(data)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", m.Name(), err)
		}
		data = out
	}
	return data, nil
}

// Reverse decodes data through every modulator, last to first.
// The first failure aborts the chain.
func (c Chain) Reverse(data []byte) ([]byte, error) {
	for i := len(c.modulators) - 1; i >= 0; i-- {
		m := c.modulators[i]
		out, err := m.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", m.Name(), err)
		}
		data = out
	}
	return data, nil
}

// ModulatorFuncs adapts a pair of functions to the Modulator interface.
type ModulatorFuncs struct {
	ID         string
	EncodeFunc func([]byte) ([]byte, error)
	DecodeFunc func([]byte) ([]byte, error)
}

// Encode calls EncodeFunc.
func (m ModulatorFuncs) Encode(data []byte) ([]byte, error) {
	return m.EncodeFunc(data)
}

// Decode calls DecodeFunc.
func (m ModulatorFuncs) Decode(data []byte) ([]byte, error) {
	return m.DecodeFunc(data)
}

// Name returns ID.
func (m ModulatorFuncs) Name() string {
	return m.ID
}
