package jsonsettings

// Validator performs custom validation after tag-based validation.
// Runs after every load from file and before every save.
type Validator[T any] interface {
	// Validate checks settings. Return *ValidationError for field-level errors.
	Validate(cfg *T) error
}

// ValidatorFunc is a function adapter for Validator interface.
type ValidatorFunc[T any] func(cfg *T) error

func (f ValidatorFunc[T]) Validate(cfg *T) error {
	return f(cfg)
}

// Constructor is implemented by settings types that consume construction
// arguments. Construct runs on a zero value before the file is read, so
// values it sets act as defaults and are visible to secret functions.
type Constructor interface {
	Construct(args ...any) error
}

// Factory builds a default payload from construction arguments.
type Factory[T any] func(args ...any) (*T, error)

// SecretFunc derives an encryption secret from the payload being encoded or
// decoded. It is called on every save and load, never cached.
type SecretFunc[T any] func(cfg *T) string

// layer produces the modulator for one position in the chain, bound to the
// payload currently being encoded or decoded.
type layer[T any] func(cfg *T) Modulator
