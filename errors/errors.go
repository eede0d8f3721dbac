package errors

import (
	// Go Internal Packages
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error so callers can decide how to react
// (retry, reject, map to an HTTP status) without string matching.
type Kind uint8

const (
	Other               Kind = iota // unclassified, treated as transient
	Invalid                         // bad input, never retried
	InsufficientBalance             // business rejection, never retried
	Conflict                        // concurrent modification, retryable
	Unsupported                     // programming-contract violation
	NotFound                        // lookup miss
	Internal                        // infrastructure failure, retryable
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case InsufficientBalance:
		return "insufficient_balance"
	case Conflict:
		return "conflict"
	case Unsupported:
		return "unsupported"
	case NotFound:
		return "not_found"
	case Internal:
		return "internal"
	default:
		return "other"
	}
}

// Error is the domain error carried across package boundaries.
// Msg is a human-readable message safe to surface to clients.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds an *Error with the given kind, message and wrapped cause.
func E(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the kind of the outermost *Error in err's chain,
// or Other if the chain contains none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// IsKind reports whether any *Error in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}

// ValidationErrors collects per-field validation failures so a caller
// can report all of them at once instead of failing on the first.
type ValidationErrors struct {
	fields []fieldError
}

type fieldError struct {
	field string
	msg   string
}

func ValidationErrs() *ValidationErrors {
	return &ValidationErrors{}
}

func (ve *ValidationErrors) Add(field, msg string) {
	ve.fields = append(ve.fields, fieldError{field: field, msg: msg})
}

// Err returns nil when no failures were added, otherwise ve itself.
func (ve *ValidationErrors) Err() error {
	if len(ve.fields) == 0 {
		return nil
	}
	return ve
}

func (ve *ValidationErrors) Error() string {
	parts := make([]string, len(ve.fields))
	for i, fe := range ve.fields {
		parts[i] = fmt.Sprintf("%s: %s", fe.field, fe.msg)
	}
	return strings.Join(parts, "; ")
}
