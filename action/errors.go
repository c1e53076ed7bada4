package action

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents error categories for resolution and dispatch.
// These categories drive exit-code mapping (see ExitCodeManager).
type ErrorType string

const (
	ErrorTypeIllegalArgument ErrorType = "illegal_argument"
	ErrorTypeOperatorFailure ErrorType = "operator_failure"
	ErrorTypeUnknownOption   ErrorType = "unknown_option"
	ErrorTypeMissingValue    ErrorType = "missing_value"
	ErrorTypeNoHandler       ErrorType = "no_handler"
	ErrorTypeInternal        ErrorType = "internal_error"
)

// Sentinels for errors.Is
var (
	ErrIllegalArgument = errors.New("illegal argument")
	ErrOperatorFailure = errors.New("operator failure")
	ErrUnknownOption   = errors.New("unknown option")
	ErrNoHandler       = errors.New("no handler")
)

// TypedError is implemented by every error this package returns
type TypedError interface {
	error
	Type() ErrorType
}

// IllegalArgumentError reports a token that names no child action of the
// current action while that action accepts no positional arguments.
type IllegalArgumentError struct {
	Token       string
	Action      string // command path of the action where resolution stopped
	Suggestions []string
}

func (e *IllegalArgumentError) Error() string {
	msg := fmt.Sprintf("invalid command argument %q", e.Token)
	return msg + formatSuggestions(e.Suggestions)
}

// Type implements TypedError
func (e *IllegalArgumentError) Type() ErrorType { return ErrorTypeIllegalArgument }

// Is matches ErrIllegalArgument
func (e *IllegalArgumentError) Is(target error) bool { return target == ErrIllegalArgument }

// OperatorError reports a raw value an option's operator could not coerce
type OperatorError struct {
	Option string
	Value  string
	Cause  error
}

func (e *OperatorError) Error() string {
	msg := fmt.Sprintf("invalid value %q for option %q", e.Value, e.Option)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Type implements TypedError
func (e *OperatorError) Type() ErrorType { return ErrorTypeOperatorFailure }

// Is matches ErrOperatorFailure
func (e *OperatorError) Is(target error) bool { return target == ErrOperatorFailure }

func (e *OperatorError) Unwrap() error { return e.Cause }

// UnknownOptionError is returned by a strict Dispatcher for an option the
// resolved action does not declare.
type UnknownOptionError struct {
	Option      string
	Action      string
	Suggestions []string
}

func (e *UnknownOptionError) Error() string {
	msg := fmt.Sprintf("unknown option %q for %q", e.Option, e.Action)
	return msg + formatSuggestions(e.Suggestions)
}

// Type implements TypedError
func (e *UnknownOptionError) Type() ErrorType { return ErrorTypeUnknownOption }

// Is matches ErrUnknownOption
func (e *UnknownOptionError) Is(target error) bool { return target == ErrUnknownOption }

// NoHandlerError is returned when neither the resolved action nor any of its
// ancestors registered a handler.
type NoHandlerError struct {
	Action string
}

func (e *NoHandlerError) Error() string {
	return fmt.Sprintf("no handler registered for %q", e.Action)
}

// Type implements TypedError
func (e *NoHandlerError) Type() ErrorType { return ErrorTypeNoHandler }

// Is matches ErrNoHandler
func (e *NoHandlerError) Is(target error) bool { return target == ErrNoHandler }

// ErrorTypeOf returns the category of err, or ErrorTypeInternal when err is
// not one of this package's errors.
func ErrorTypeOf(err error) ErrorType {
	var typed TypedError
	if errors.As(err, &typed) {
		return typed.Type()
	}
	return ErrorTypeInternal
}

func formatSuggestions(suggestions []string) string {
	switch len(suggestions) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf(" (did you mean %q?)", suggestions[0])
	default:
		quoted := make([]string, len(suggestions))
		for i, s := range suggestions {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		return " (did you mean one of " + strings.Join(quoted, ", ") + "?)"
	}
}
