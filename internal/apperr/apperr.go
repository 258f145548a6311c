// Package apperr defines the error taxonomy shared by the API handlers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	// KindInternal is a downstream or unexpected failure.
	KindInternal Kind = iota
	// KindValidation is missing or malformed client input.
	KindValidation
	// KindAuth is a failed credential or shared-secret check.
	KindAuth
	// KindConfiguration is required configuration that is absent or invalid.
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindConfiguration:
		return "configuration"
	default:
		return "internal"
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" && msg == "" {
		msg = e.Field + " is required"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports a missing or malformed field.
func Validation(field, message string) error {
	if message == "" {
		message = field + " is required"
	}
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// Auth reports a failed authentication check.
func Auth(message string) error {
	return &Error{Kind: KindAuth, Message: message}
}

// Configuration reports absent or invalid configuration.
func Configuration(message string) error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// Internal wraps a downstream failure under op.
func Internal(op string, err error) error {
	return &Error{Kind: KindInternal, Message: op, Err: err}
}

// KindOf returns the kind of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// As returns the classified error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
