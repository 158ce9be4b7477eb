package modcrypt

import (
	"bytes"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/essentialkaos/sio"
	"golang.org/x/crypto/scrypt"
)

const (
	// SaltSize is the size of the random salt stored in every encrypted blob.
	SaltSize = 32

	// KeySize is the size of the derived cipher key and of the key verifier.
	KeySize = 32

	// DefaultCost is the default scrypt cost (N = 1 << DefaultCost).
	DefaultCost uint8 = 15

	// MinCost and MaxCost bound the accepted scrypt cost.
	MinCost uint8 = 10
	MaxCost uint8 = 22
)

const headerSize = len(magic) + 1 + SaltSize + KeySize

var magic = [4]byte{'J', 'S', 'C', '1'}

// Errors returned by the encryption modulator.
var (
	ErrEmptySecret = errors.New("modcrypt: secret is empty")
	ErrWrongSecret = errors.New("modcrypt: wrong secret")
	ErrCorruptData = errors.New("modcrypt: data is corrupt")
	ErrInvalidCost = errors.New("modcrypt: scrypt cost out of range")
)

// Options configures the encryption modulator.
type Options struct {
	// Cost is log2 of the scrypt N parameter. Zero means DefaultCost.
	// Only affects encoding; decoding reads the cost from the data.
	Cost uint8
}

// SecretFunc returns the secret to use for a single Encode or Decode call.
type SecretFunc func() (string, error)

// Modulator encrypts on Encode and decrypts on Decode.
type Modulator struct {
	secret SecretFunc
	cost   uint8
}

// New creates a modulator with a fixed secret.
func New(secret string, opts Options) *Modulator {
	return NewFunc(func() (string, error) { return secret, nil }, opts)
}

// NewFunc creates a modulator whose secret is resolved on every call.
func NewFunc(fn SecretFunc, opts Options) *Modulator {
	cost := opts.Cost
	if cost == 0 {
		cost = DefaultCost
	}
	return &Modulator{secret: fn, cost: cost}
}

// NewEnv creates a modulator reading its secret from the named environment
// variable on every call.
func NewEnv(name string, opts Options) *Modulator {
	return NewFunc(func() (string, error) {
		value := os.Getenv(name)
		if value == "" {
			return "", fmt.Errorf("%w: environment variable %s is not set", ErrEmptySecret, name)
		}
		return value, nil
	}, opts)
}

// Name returns the modulator identifier.
func (m *Modulator) Name() string {
	return "encryption"
}

// Encode encrypts data with a fresh salt.
func (m *Modulator) Encode(data []byte) ([]byte, error) {
	secret, err := m.resolveSecret()
	if err != nil {
		return nil, err
	}

	if m.cost < MinCost || m.cost > MaxCost {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCost, m.cost)
	}

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("modcrypt: generate salt: %w", err)
	}

	key, verifier, err := deriveKey(secret, salt, m.cost)
	if err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer(make([]byte, 0, headerSize+len(data)))
	buf.Write(magic[:])
	buf.WriteByte(m.cost)
	buf.Write(salt)
	buf.Write(verifier)

	// Empty plaintext is stored as a bare header
	if len(data) == 0 {
		return buf.Bytes(), nil
	}

	if _, err := sio.Encrypt(buf, bytes.NewReader(data), sioConfig(key)); err != nil {
		return nil, fmt.Errorf("modcrypt: encrypt: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode decrypts data produced by Encode.
func (m *Modulator) Decode(data []byte) ([]byte, error) {
	secret, err := m.resolveSecret()
	if err != nil {
		return nil, err
	}

	if len(data) < headerSize || !bytes.Equal(data[:len(magic)], magic[:]) {
		return nil, fmt.Errorf("%w: missing or truncated header", ErrCorruptData)
	}

	cost := data[len(magic)]
	if cost < MinCost || cost > MaxCost {
		return nil, fmt.Errorf("%w: invalid cost %d", ErrCorruptData, cost)
	}

	salt := data[len(magic)+1 : len(magic)+1+SaltSize]
	stored := data[len(magic)+1+SaltSize : headerSize]

	key, verifier, err := deriveKey(secret, salt, cost)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare(stored, verifier) != 1 {
		return nil, ErrWrongSecret
	}

	body := data[headerSize:]
	if len(body) == 0 {
		return []byte{}, nil
	}

	var out bytes.Buffer
	if _, err := sio.Decrypt(&out, bytes.NewReader(body), sioConfig(key)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}

	return out.Bytes(), nil
}

func (m *Modulator) resolveSecret() ([]byte, error) {
	if m == nil || m.secret == nil {
		return nil, ErrEmptySecret
	}

	secret, err := m.secret()
	if err != nil {
		return nil, err
	}
	if secret == "" {
		return nil, ErrEmptySecret
	}

	return []byte(secret), nil
}

// deriveKey returns the cipher key and the key verifier for secret and salt.
func deriveKey(secret, salt []byte, cost uint8) ([]byte, []byte, error) {
	keyData, err := scrypt.Key(secret, salt, 1<<cost, 16, 1, 2*KeySize)
	if err != nil {
		return nil, nil, fmt.Errorf("modcrypt: derive key: %w", err)
	}
	return keyData[:KeySize], keyData[KeySize:], nil
}

func sioConfig(key []byte) sio.Config {
	return sio.Config{
		Key:          key,
		CipherSuites: []byte{sio.CHACHA20_POLY1305},
	}
}
