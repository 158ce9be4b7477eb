package jsonsettings

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Azhovan/jsonsettings/modbase64"
	"github.com/Azhovan/jsonsettings/modcrypt"
)

// Builder accumulates the configuration of a Settings before its first load.
// Modulators are applied on save in the order their With* calls were made.
// A Builder is single-use: LoadNow fails on a consumed builder.
// Invalid arguments are recorded and reported by LoadNow.
type Builder[T any] struct {
	path       string
	layers     []layerSpec[T]
	codec      Codec
	args       []any
	factory    Factory[T]
	validators []Validator[T]
	logger     *slog.Logger
	recovery   bool
	autosave   bool
	cryptOpts  modcrypt.Options

	err      error
	consumed bool
}

// layerSpec describes a chain position until LoadNow materializes it.
type layerSpec[T any] struct {
	modulator Modulator     // Fixed modulator (base64, custom)
	secret    string        // Literal encryption secret
	secretFn  SecretFunc[T] // Encryption secret derived from the payload
	env       string        // Environment variable holding the encryption secret
}

// Errors recorded by the builder.
var (
	ErrBuilderConsumed = errors.New("builder already used")
	ErrEmptySecret     = errors.New("encryption secret is empty")
	ErrNilModulator    = errors.New("modulator is nil")
)

// Configure starts building settings bound to path.
//
//	s, err := jsonsettings.Configure[Config]("app.json").
//	    WithBase64().
//	    WithEncryption("SuperPassword").
//	    LoadNow()
func Configure[T any](path string) *Builder[T] {
	return &Builder[T]{
		path:   path,
		layers: make([]layerSpec[T], 0),
	}
}

// WithBase64 appends a base64 layer.
func (b *Builder[T]) WithBase64() *Builder[T] {
	return b.WithModulator(modbase64.New(modbase64.Options{}))
}

// WithEncryption appends an encryption layer with a fixed secret.
func (b *Builder[T]) WithEncryption(secret string) *Builder[T] {
	if secret == "" {
		return b.fail(ErrEmptySecret)
	}
	return b.addLayer(layerSpec[T]{secret: secret})
}

// WithEncryptionFunc appends an encryption layer whose secret is derived from
// the payload on every save and load. On load the function sees the payload
// as built from the construction arguments, before the file is read.
func (b *Builder[T]) WithEncryptionFunc(fn SecretFunc[T]) *Builder[T] {
	if fn == nil {
		return b.fail(errors.New("secret function is nil"))
	}
	return b.addLayer(layerSpec[T]{secretFn: fn})
}

// WithEncryptionEnv appends an encryption layer reading its secret from an
// environment variable on every save and load.
func (b *Builder[T]) WithEncryptionEnv(name string) *Builder[T] {
	if name == "" {
		return b.fail(errors.New("environment variable name is empty"))
	}
	return b.addLayer(layerSpec[T]{env: name})
}

// WithEncryptionCost sets the scrypt cost (log2 N) of every encryption layer.
func (b *Builder[T]) WithEncryptionCost(cost uint8) *Builder[T] {
	if cost < modcrypt.MinCost || cost > modcrypt.MaxCost {
		return b.fail(fmt.Errorf("%w: %d", modcrypt.ErrInvalidCost, cost))
	}
	b.cryptOpts.Cost = cost
	return b
}

// WithModulator appends a custom modulator.
func (b *Builder[T]) WithModulator(m Modulator) *Builder[T] {
	if m == nil {
		return b.fail(ErrNilModulator)
	}
	return b.addLayer(layerSpec[T]{modulator: m})
}

// WithArgs sets construction arguments passed to the factory or Construct method
// when the file does not exist (and as defaults before it is read).
func (b *Builder[T]) WithArgs(args ...any) *Builder[T] {
	b.args = append([]any(nil), args...)
	return b
}

// WithFactory sets the function building the default payload.
func (b *Builder[T]) WithFactory(fn Factory[T]) *Builder[T] {
	b.factory = fn
	return b
}

// WithCodec sets the serialization codec. Default: inferred from the file extension, JSON otherwise.
func (b *Builder[T]) WithCodec(c Codec) *Builder[T] {
	if c == nil {
		return b.fail(errors.New("codec is nil"))
	}
	b.codec = c
	return b
}

// WithFormat selects a built-in codec by name ("json", "yaml", "toml").
func (b *Builder[T]) WithFormat(format string) *Builder[T] {
	c, err := CodecFor(format)
	if err != nil {
		return b.fail(err)
	}
	b.codec = c
	return b
}

// WithValidator adds a custom validator (executed after tag-based validation).
func (b *Builder[T]) WithValidator(v Validator[T]) *Builder[T] {
	if v == nil {
		return b.fail(errors.New("validator is nil"))
	}
	b.validators = append(b.validators, v)
	return b
}

// WithLogger sets the logger. Default: discard.
func (b *Builder[T]) WithLogger(l *slog.Logger) *Builder[T] {
	b.logger = l
	return b
}

// WithRecovery moves an undecodable, malformed or invalid file aside
// (<path>.<timestamp>.bak) and loads defaults instead of failing.
func (b *Builder[T]) WithRecovery() *Builder[T] {
	b.recovery = true
	return b
}

// WithAutosave enables autosave on the loaded settings.
func (b *Builder[T]) WithAutosave() *Builder[T] {
	b.autosave = true
	return b
}

// LoadNow builds the settings and loads them from the file, or default-constructs
// them if the file does not exist.
func (b *Builder[T]) LoadNow() (*Settings[T], error) {
	if b.consumed {
		return nil, newError("configure", b.path, ErrConfiguration, ErrBuilderConsumed)
	}
	b.consumed = true

	if b.err != nil {
		return nil, newError("configure", b.path, ErrConfiguration, b.err)
	}
	if b.path == "" {
		return nil, newError("configure", "", ErrConfiguration, errEmptyPath)
	}

	s := b.build()
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (b *Builder[T]) build() *Settings[T] {
	codec := b.codec
	if codec == nil {
		codec = inferCodec(b.path)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	layers := make([]layer[T], len(b.layers))
	for i, spec := range b.layers {
		layers[i] = spec.materialize(b.cryptOpts)
	}

	return &Settings[T]{
		path:       b.path,
		layers:     layers,
		codec:      codec,
		args:       b.args,
		factory:    b.factory,
		validators: append([]Validator[T](nil), b.validators...),
		recovery:   b.recovery,
		logger:     logger,
		autosave:   b.autosave,
	}
}

func (b *Builder[T]) addLayer(spec layerSpec[T]) *Builder[T] {
	if b.err != nil {
		return b
	}
	b.layers = append(b.layers, spec)
	return b
}

// fail records the first configuration error.
func (b *Builder[T]) fail(err error) *Builder[T] {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (spec layerSpec[T]) materialize(opts modcrypt.Options) layer[T] {
	switch {
	case spec.modulator != nil:
		m := spec.modulator
		return func(*T) Modulator { return m }
	case spec.secretFn != nil:
		fn := spec.secretFn
		return func(cfg *T) Modulator {
			return modcrypt.NewFunc(func() (string, error) { return fn(cfg), nil }, opts)
		}
	case spec.env != "":
		m := modcrypt.NewEnv(spec.env, opts)
		return func(*T) Modulator { return m }
	default:
		m := modcrypt.New(spec.secret, opts)
		return func(*T) Modulator { return m }
	}
}
