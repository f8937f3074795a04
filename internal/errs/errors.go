package errs

import (
	"errors"
	"fmt"
)

// Error is the standard application error carrying a transport-agnostic kind.
type Error struct {
	Kind    Kind
	Message string
	// Wrapped underlying error.
	WrappedErr error
}

// Error returns the string representation of the error message.
func (e *Error) Error() string {
	if e.WrappedErr != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.WrappedErr)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.WrappedErr
}

// Kind defines the kind or class of an error.
type Kind uint8

const (
	Other             Kind = iota // Unclassified error
	Internal                      // Internal error
	NotFound                      // Entity does not exist for the given key combination
	Conflict                      // Entity or claim already exists
	InvalidAmount                 // Submitted amount does not match the expected amount
	IllegalTransition             // Transition not valid from the record's current state
	Unauthorized                  // Caller lacks the required capability
	Invalid                       // Invalid input, validation error etc
)

func (k Kind) String() string {
	switch k {
	case Internal:
		return "internal error"
	case NotFound:
		return "not found"
	case Conflict:
		return "conflict"
	case InvalidAmount:
		return "invalid amount"
	case IllegalTransition:
		return "illegal transition"
	case Unauthorized:
		return "unauthorized"
	case Invalid:
		return "invalid input"
	default:
		return "unclassified error"
	}
}

// E builds an *Error from any combination of Kind, string message and
// wrapped error, in any order.
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case error:
			e.WrappedErr = arg
		case string:
			e.Message = arg
		}
	}
	return e
}

// KindOf extracts the kind from err, walking the wrap chain. Plain errors
// report Other.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	return KindOf(err) == k
}

func NewInternalError(msg string) error {
	return E(Internal, msg)
}

func NewNotFoundError(msg string) error {
	return E(NotFound, msg)
}

func NewConflictError(msg string) error {
	return E(Conflict, msg)
}

func NewInvalidAmountError(msg string) error {
	return E(InvalidAmount, msg)
}

func NewIllegalTransitionError(msg string) error {
	return E(IllegalTransition, msg)
}

func NewUnauthorizedError(msg string) error {
	return E(Unauthorized, msg)
}

func NewInvalidError(msg string) error {
	return E(Invalid, msg)
}
