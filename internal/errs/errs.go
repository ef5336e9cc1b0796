// Package errs classifies failures into the small set of kinds the bot can
// explain to a user, and maps each kind to exactly one user-facing message.
package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnclassified Kind = iota
	KindValidation
	KindGeneration
	KindPersistence
	KindNotFound
)

// Error carries a kind alongside the wrapped cause. Only validation errors
// expose their message text to the end user.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a user-correctable input error; msg is shown verbatim.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// Generation wraps a backend failure (misconfiguration, unreachable, timeout).
func Generation(msg string, err error) error {
	return &Error{Kind: KindGeneration, Msg: msg, Err: err}
}

// Persistence wraps a storage failure on a critical write or read.
func Persistence(msg string, err error) error {
	return &Error{Kind: KindPersistence, Msg: msg, Err: err}
}

// NotFound marks a lookup miss (e.g. history index out of range).
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// KindOf extracts the classified kind, KindUnclassified for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnclassified
}

// UserMessage is the single presentation-layer mapping from failure kind to
// the text shown to the user. Every kind except validation maps to a fixed,
// non-leaking message.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "😔 An unexpected error occurred. Please try again later."
	}
	switch e.Kind {
	case KindValidation:
		return fmt.Sprintf("⚠️ %s\n\nPlease check your input and try again.", e.Msg)
	case KindGeneration:
		return "😕 Sorry, there was an error generating your tweets. Please try again in a moment."
	case KindPersistence:
		return "😕 There was an error accessing your data. Please try again later."
	case KindNotFound:
		return "Entry not found."
	default:
		return "😔 An unexpected error occurred. Please try again later."
	}
}
