package plan

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrRelativeBaseDirectory is returned when Resolve is called with a base directory that is not absolute.
var ErrRelativeBaseDirectory = errors.New("base directory must be absolute")

var errEmptyPattern = errors.New("empty pattern")

// Kind classifies a configuration error.
type Kind int

// Configuration error kinds.
const (
	KindMissingEntry Kind = iota + 1
	KindInvalidMode
	KindInvalidFallback
	KindInvalidWatchPattern
	KindInvalidPattern
	KindEmptyRule
	KindInvalidPort
	KindInvalidBudget
	KindInvalidType
)

func (k Kind) String() string {
	switch k {
	case KindMissingEntry:
		return "MissingEntry"
	case KindInvalidMode:
		return "InvalidMode"
	case KindInvalidFallback:
		return "InvalidFallback"
	case KindInvalidWatchPattern:
		return "InvalidWatchPattern"
	case KindInvalidPattern:
		return "InvalidPattern"
	case KindEmptyRule:
		return "EmptyRule"
	case KindInvalidPort:
		return "InvalidPort"
	case KindInvalidBudget:
		return "InvalidBudget"
	case KindInvalidType:
		return "InvalidType"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ConfigError describes a single problem with one field of a configuration document.
type ConfigError struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}

	return fmt.Sprintf("%s: %s: %s", e.Field, e.Kind, msg)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Errors returns every ConfigError contained in err, in the order they were reported.
// It looks through wrapping and through aggregates built by go.uber.org/multierr or errors.Join.
func Errors(err error) []*ConfigError {
	var result []*ConfigError

	collect(err, &result)

	return result
}

func collect(err error, out *[]*ConfigError) {
	switch e := err.(type) { //nolint:errorlint // walks the error tree explicitly
	case nil:
	case *ConfigError:
		*out = append(*out, e)
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			collect(inner, out)
		}
	case interface{ Unwrap() error }:
		collect(e.Unwrap(), out)
	}
}

// HasKind reports whether err contains a ConfigError of the given kind.
func HasKind(err error, kind Kind) bool {
	for _, e := range Errors(err) {
		if e.Kind == kind {
			return true
		}
	}

	return false
}

// collector accumulates field errors during one resolution pass.
type collector struct {
	err error
}

func (c *collector) add(kind Kind, field, format string, args ...any) {
	c.err = multierr.Append(c.err, &ConfigError{
		Kind:    kind,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

func (c *collector) wrap(kind Kind, field, msg string, err error) {
	c.err = multierr.Append(c.err, &ConfigError{
		Kind:    kind,
		Field:   field,
		Message: msg,
		Err:     err,
	})
}

func (c *collector) typeMismatch(field, want string, got any) {
	c.add(KindInvalidType, field, "expected %s, got %s", want, describe(got))
}
