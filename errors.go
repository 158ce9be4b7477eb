package jsonsettings

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrFileAccess reports a failure reading or writing the settings file.
	ErrFileAccess = errors.New("file access failed")

	// ErrDecode reports that reversing the modulator chain failed (wrong secret, corrupt bytes).
	ErrDecode = errors.New("decode failed")

	// ErrEncode reports that applying the modulator chain failed while saving.
	ErrEncode = errors.New("encode failed")

	// ErrSerialization reports that the payload could not be serialized.
	ErrSerialization = errors.New("serialization failed")

	// ErrDeserialization reports that the decoded text does not match the payload shape.
	ErrDeserialization = errors.New("deserialization failed")

	// ErrConfiguration reports builder misuse (missing path, empty secret, reused builder).
	ErrConfiguration = errors.New("invalid configuration")

	// ErrValidation reports that the payload failed tag-based or custom validation.
	ErrValidation = errors.New("validation failed")

	// ErrAutosave reports that a mutation was applied in memory but the automatic save failed.
	ErrAutosave = errors.New("autosave failed")
)

// Error describes a failed settings operation.
type Error struct {
	Op   string // "load", "save", "reload", "recover", "autosave", "configure", "set"
	Path string // Settings file path, may be empty for configuration errors
	Kind error  // One of the Err* kind sentinels
	Err  error  // Underlying cause
}

// Error formats the error as "jsonsettings: <op> <path>: <kind>: <cause>".
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("jsonsettings: ")
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Kind != nil {
		b.WriteString(": ")
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func newError(op, path string, kind, err error) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}

// Error codes for validation failures.
const (
	ErrCodeRequired = "required"
	ErrCodeMin      = "min"
	ErrCodeMax      = "max"
	ErrCodeOneOf    = "oneof"
)

// ValidationError aggregates field-level validation failures.
type ValidationError struct {
	FieldErrors []FieldError
}

// Error formats validation errors as a multi-line message.
func (e *ValidationError) Error() string {
	if len(e.FieldErrors) == 0 {
		return "settings validation failed: no errors"
	}

	var b strings.Builder
	if len(e.FieldErrors) == 1 {
		b.WriteString("settings validation failed: 1 error\n")
	} else {
		fmt.Fprintf(&b, "settings validation failed: %d errors\n", len(e.FieldErrors))
	}

	for _, fe := range e.FieldErrors {
		fmt.Fprintf(&b, "  - %s: %s (%s)\n", fe.FieldPath, fe.Code, fe.Message)
	}

	return strings.TrimRight(b.String(), "\n")
}

// FieldError represents a single field validation failure.
type FieldError struct {
	FieldPath string // Dot notation (e.g., "Window.Width")
	Code      string // Error code (e.g., "required", "min")
	Message   string // Human-readable description
}
