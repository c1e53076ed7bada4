package middleware

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidatorFunc represents a validation run against a resolved invocation
// before its handler. Structural checks (known actions, argument policy,
// operator coercion) already happened during resolution; validators cover
// cross-option business rules.
type ValidatorFunc func(inv Invocation) error

// Validator creates a middleware that runs the validators registered through
// WithCustomValidators, in name order.
func Validator(options ...MiddlewareOption) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}
	return ValidatorWithCustom(config.CustomValidators)
}

// ValidatorWithCustom runs the provided named validators before the handler.
// The map key is used in error reporting.
func ValidatorWithCustom(validators map[string]ValidatorFunc) Middleware {
	names := make([]string, 0, len(validators))
	for name := range validators {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, inv Invocation) error {
			for _, name := range names {
				if err := validators[name](inv); err != nil {
					validationErr := &ValidationError{}
					if errors.As(err, &validationErr) {
						return validationErr
					}
					return &ValidationError{
						Field:   name,
						Message: "validation failed",
						Cause:   err,
					}
				}
			}
			return next(ctx, inv)
		}
	}
}

// NamedValidator associates a human-readable name with a ValidatorFunc for
// clearer error reporting and easier composition.
type NamedValidator struct {
	Name string
	Fn   ValidatorFunc
}

// Custom wraps an arbitrary ValidatorFunc with a name for reporting.
func Custom(name string, fn ValidatorFunc) NamedValidator {
	return NamedValidator{Name: name, Fn: fn}
}

// Required returns a NamedValidator that fails when any of the options was
// not supplied.
func Required(optionNames ...string) NamedValidator {
	return NamedValidator{Name: "required_options", Fn: RequireOptions(optionNames...)}
}

// Validate composes a set of NamedValidators into a single Middleware.
//
// Example:
//
//	root.Use(middleware.Validate(
//	    middleware.Required("env"),
//	    middleware.Custom("replicas", checkReplicas),
//	))
func Validate(validators ...NamedValidator) Middleware {
	m := make(map[string]ValidatorFunc, len(validators))
	for _, v := range validators {
		if v.Name == "" || v.Fn == nil {
			continue
		}
		m[v.Name] = v.Fn
	}
	return ValidatorWithCustom(m)
}

// RequireOptions fails when one of the options was never supplied. A supplied
// option with a falsy value counts as present.
func RequireOptions(optionNames ...string) ValidatorFunc {
	return func(inv Invocation) error {
		var missing []string
		for _, name := range optionNames {
			if !inv.HasOption(name) {
				missing = append(missing, name)
			}
		}
		if len(missing) == 0 {
			return nil
		}
		return &ValidationError{
			Field:   missing[0],
			Message: "missing required options: " + strings.Join(missing, ", "),
		}
	}
}

// ConditionalRequired makes options required when condition returns nil
func ConditionalRequired(condition ValidatorFunc, requiredOptions ...string) ValidatorFunc {
	return func(inv Invocation) error {
		if err := condition(inv); err != nil {
			return nil
		}
		return RequireOptions(requiredOptions...)(inv)
	}
}

// OptionGiven is a condition for ConditionalRequired that holds when the
// option was supplied.
func OptionGiven(name string) ValidatorFunc {
	return func(inv Invocation) error {
		if inv.HasOption(name) {
			return nil
		}
		return fmt.Errorf("option %q not given", name)
	}
}

// MutuallyExclusive fails when more than one of the options was supplied
func MutuallyExclusive(optionNames ...string) ValidatorFunc {
	return func(inv Invocation) error {
		var given []string
		for _, name := range optionNames {
			if inv.HasOption(name) {
				given = append(given, name)
			}
		}
		if len(given) <= 1 {
			return nil
		}
		return &ValidationError{
			Field:   given[1],
			Message: "options cannot be combined: " + strings.Join(given, ", "),
		}
	}
}

// MaxArguments fails when more than n positional arguments were supplied
func MaxArguments(n int) ValidatorFunc {
	return func(inv Invocation) error {
		if got := len(inv.Arguments()); got > n {
			return &ValidationError{
				Field:   "arguments",
				Value:   got,
				Message: fmt.Sprintf("at most %d arguments allowed, got %d", n, got),
			}
		}
		return nil
	}
}

// NoopValidator passes every invocation through
func NoopValidator() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return next
	}
}
