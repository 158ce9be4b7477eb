package jsonsettings

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"time"

	"github.com/Azhovan/jsonsettings/internal/atomicfile"
)

// Settings is a typed payload bound to a file, a modulator chain and a codec.
// It is not safe for concurrent use.
type Settings[T any] struct {
	path       string
	layers     []layer[T]
	codec      Codec
	args       []any
	factory    Factory[T]
	validators []Validator[T]
	recovery   bool
	logger     *slog.Logger

	payload   *T
	persisted bool

	autosave        bool
	onAutosaveError func(error)
}

// Load reads settings from path, or default-constructs them if the file does not exist.
// configure customizes the builder (modulators, codec, validators).
//
//	s, err := jsonsettings.Load[Config]("app.json", func(b *jsonsettings.Builder[Config]) {
//	    b.WithBase64().WithEncryption("SuperPassword")
//	})
func Load[T any](path string, configure ...func(*Builder[T])) (*Settings[T], error) {
	b := Configure[T](path)
	for _, fn := range configure {
		if fn != nil {
			fn(b)
		}
	}
	return b.LoadNow()
}

// LoadWithArgs is Load with construction arguments used when building the default payload.
func LoadWithArgs[T any](path string, configure func(*Builder[T]), args ...any) (*Settings[T], error) {
	b := Configure[T](path).WithArgs(args...)
	if configure != nil {
		configure(b)
	}
	return b.LoadNow()
}

// Value returns the in-memory payload. Mutations are persisted by Save,
// or use Update to have them autosaved.
func (s *Settings[T]) Value() *T {
	return s.payload
}

// Path returns the bound file path.
func (s *Settings[T]) Path() string {
	return s.path
}

// SetPath rebinds the settings to another file. Nothing is read or written.
func (s *Settings[T]) SetPath(path string) error {
	if path == "" {
		return newError("configure", "", ErrConfiguration, errEmptyPath)
	}
	s.path = path
	return nil
}

// Persisted reports whether the payload was read from, or last saved to, the bound file.
// It is false for settings default-constructed because the file did not exist.
func (s *Settings[T]) Persisted() bool {
	return s.persisted
}

// Codec returns the codec used for serialization.
func (s *Settings[T]) Codec() Codec {
	return s.codec
}

// Chain returns the modulator chain bound to the current payload.
func (s *Settings[T]) Chain() Chain {
	return s.chainFor(s.payload)
}

// Save writes the payload to the bound path.
func (s *Settings[T]) Save() error {
	if err := s.write("save", s.path); err != nil {
		return err
	}
	s.persisted = true
	return nil
}

// SaveAs writes the payload to path without rebinding. Use SetPath to rebind.
func (s *Settings[T]) SaveAs(path string) error {
	return s.write("save", path)
}

// Reload re-reads the bound file into a freshly constructed payload.
// On failure the current payload is kept.
func (s *Settings[T]) Reload() error {
	payload, persisted, err := s.read("reload")
	if err != nil {
		return err
	}
	s.payload = payload
	s.persisted = persisted
	return nil
}

// Update applies fn to the payload and autosaves when enabled.
// If the autosave fails the mutation stays applied and the error is returned.
func (s *Settings[T]) Update(fn func(cfg *T)) error {
	fn(s.payload)
	return s.changed()
}

// EnableAutosave makes every Update (and Bag mutation) save immediately.
func (s *Settings[T]) EnableAutosave() *Settings[T] {
	s.autosave = true
	return s
}

// DisableAutosave stops automatic saves. Already persisted data is untouched.
func (s *Settings[T]) DisableAutosave() *Settings[T] {
	s.autosave = false
	return s
}

// AutosaveEnabled reports whether autosave is on.
func (s *Settings[T]) AutosaveEnabled() bool {
	return s.autosave
}

// OnAutosaveError registers a handler called with every autosave failure,
// in addition to the error returned from the mutating call.
func (s *Settings[T]) OnAutosaveError(fn func(error)) *Settings[T] {
	s.onAutosaveError = fn
	return s
}

// changed runs the autosave observer after a mutation.
func (s *Settings[T]) changed() error {
	if !s.autosave {
		return nil
	}

	if err := s.Save(); err != nil {
		autosaveErr := newError("autosave", s.path, ErrAutosave, err)
		s.logger.Warn("autosave failed", "path", s.path, "error", err)
		if s.onAutosaveError != nil {
			s.onAutosaveError(autosaveErr)
		}
		return autosaveErr
	}
	return nil
}

// load performs the initial read, applying recovery when enabled.
func (s *Settings[T]) load() error {
	payload, persisted, err := s.read("load")
	if err != nil {
		if !s.recovery || !recoverable(err) {
			return err
		}
		payload, err = s.recoverFrom(err)
		if err != nil {
			return err
		}
		persisted = false
	}

	s.payload = payload
	s.persisted = persisted
	return nil
}

// read constructs a payload and fills it from the bound file.
// A missing file is not an error: the constructed payload is returned with persisted=false.
func (s *Settings[T]) read(op string) (*T, bool, error) {
	payload, err := s.construct()
	if err != nil {
		return nil, false, newError(op, s.path, ErrConfiguration, err)
	}

	// Step 1: read the raw bytes
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("settings file not found, using defaults", "path", s.path)
			return payload, false, nil
		}
		return nil, false, newError(op, s.path, ErrFileAccess, err)
	}

	// Step 2: reverse the modulator chain, secrets see the constructed payload
	data, err := s.chainFor(payload).Reverse(raw)
	if err != nil {
		return nil, false, newError(op, s.path, ErrDecode, err)
	}

	// Step 3: deserialize over the defaults; an empty document keeps them
	if len(bytes.TrimSpace(data)) > 0 {
		if err := s.codec.Unmarshal(data, payload); err != nil {
			return nil, false, newError(op, s.path, ErrDeserialization, err)
		}
	}

	// Step 4: validate
	if err := s.validate(payload); err != nil {
		return nil, false, newError(op, s.path, ErrValidation, err)
	}

	s.logger.Debug("settings loaded", "path", s.path, "format", s.codec.Name(), "modulators", len(s.layers))
	return payload, true, nil
}

// write validates, serializes, encodes and atomically writes the payload.
func (s *Settings[T]) write(op, path string) error {
	if path == "" {
		return newError(op, "", ErrConfiguration, errEmptyPath)
	}

	if err := s.validate(s.payload); err != nil {
		return newError(op, path, ErrValidation, err)
	}

	data, err := s.codec.Marshal(s.payload)
	if err != nil {
		return newError(op, path, ErrSerialization, err)
	}

	data, err = s.chainFor(s.payload).Apply(data)
	if err != nil {
		return newError(op, path, ErrEncode, err)
	}

	if err := atomicfile.Write(path, data); err != nil {
		return newError(op, path, ErrFileAccess, err)
	}

	s.logger.Debug("settings saved", "path", path, "bytes", len(data))
	return nil
}

// recoverFrom moves the unreadable file aside and falls back to a default payload.
func (s *Settings[T]) recoverFrom(cause error) (*T, error) {
	backup := atomicfile.ExpandPathWithTime(s.path+".{{timestamp}}.bak", time.Now())
	if err := os.Rename(s.path, backup); err != nil {
		return nil, newError("recover", s.path, ErrFileAccess, err)
	}

	s.logger.Warn("settings file unreadable, moved aside and using defaults",
		"path", s.path, "backup", backup, "error", cause)

	payload, err := s.construct()
	if err != nil {
		return nil, newError("recover", s.path, ErrConfiguration, err)
	}
	return payload, nil
}

// construct builds the default payload from the factory, Constructor or zero value.
func (s *Settings[T]) construct() (*T, error) {
	if s.factory != nil {
		payload, err := s.factory(s.args...)
		if err != nil {
			return nil, fmt.Errorf("factory: %w", err)
		}
		if payload == nil {
			return nil, errors.New("factory returned nil payload")
		}
		return payload, nil
	}

	payload := new(T)
	if c, ok := any(payload).(Constructor); ok {
		if err := c.Construct(s.args...); err != nil {
			return nil, fmt.Errorf("construct %T: %w", payload, err)
		}
		return payload, nil
	}

	if len(s.args) > 0 {
		return nil, fmt.Errorf("%d construction arguments given but %T has no factory or Construct method", len(s.args), payload)
	}
	return payload, nil
}

// validate runs tag-based validation followed by custom validators.
func (s *Settings[T]) validate(payload *T) error {
	fieldErrors := validateStruct(reflect.ValueOf(payload), "")

	for i, v := range s.validators {
		err := v.Validate(payload)
		if err == nil {
			continue
		}
		var valErr *ValidationError
		if errors.As(err, &valErr) {
			fieldErrors = append(fieldErrors, valErr.FieldErrors...)
			continue
		}
		return fmt.Errorf("validator %d failed: %w", i, err)
	}

	if len(fieldErrors) > 0 {
		return &ValidationError{FieldErrors: fieldErrors}
	}
	return nil
}

func (s *Settings[T]) chainFor(payload *T) Chain {
	modulators := make([]Modulator, len(s.layers))
	for i, l := range s.layers {
		modulators[i] = l(payload)
	}
	return Chain{modulators: modulators}
}

func recoverable(err error) bool {
	return errors.Is(err, ErrDecode) || errors.Is(err, ErrDeserialization) || errors.Is(err, ErrValidation)
}

var errEmptyPath = errors.New("path is empty")
