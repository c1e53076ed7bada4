// Package middleware provides built-in middleware for go-action handlers
// Focused on 4 essential middleware: Logger, Recovery, Timeout, and Validator
package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// This package defines middleware using interfaces to avoid import cycles.
// The action package imports this package and *action.CommandContext satisfies
// Invocation. Handlers registered on actions receive the concrete type.

// Invocation describes the resolved command context that middleware can rely
// on. It is implemented by *action.CommandContext.
type Invocation interface {
	// Command returns the name of the resolved command or action.
	Command() string

	// CommandPath returns the space separated names from the root command
	// down to the resolved action, e.g. "tool deploy".
	CommandPath() string

	// ActionName returns the name of the resolved action.
	ActionName() string

	// IsSubAction reports whether the invocation resolved below the root.
	IsSubAction() bool

	// Arguments returns the positional arguments. The returned slice should
	// be treated as read-only.
	Arguments() []string

	// HasOption reports whether the option was supplied, regardless of its
	// value. Use it to tell "given with a falsy value" from "never given".
	HasOption(name string) bool

	// OptionValue returns the coerced value of an option, or nil when the
	// option was not supplied.
	OptionValue(name string) any
}

// HandlerFunc represents the handler signature seen by middleware
type HandlerFunc func(ctx context.Context, inv Invocation) error

// Middleware defines the middleware function signature
type Middleware func(next HandlerFunc) HandlerFunc

// MiddlewareChain represents a chain of middleware functions
type MiddlewareChain []Middleware

// Apply applies the middleware chain to a HandlerFunc. Middleware are wrapped
// in the order they appear in the chain, so the first one runs outermost.
func (chain MiddlewareChain) Apply(handler HandlerFunc) HandlerFunc {
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}
	return handler
}

// Use returns a new chain with the provided middleware appended.
func (chain MiddlewareChain) Use(middleware ...Middleware) MiddlewareChain {
	out := make(MiddlewareChain, 0, len(chain)+len(middleware))
	out = append(out, chain...)
	return append(out, middleware...)
}

// Chain creates a new middleware chain from the provided middleware, preserving
// order.
func Chain(middleware ...Middleware) MiddlewareChain {
	return MiddlewareChain(middleware)
}

// Error types for middleware

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Value   any
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// TimeoutError represents a timeout error
type TimeoutError struct {
	Duration time.Duration
	Command  string
}

func (e *TimeoutError) Error() string {
	return "command '" + e.Command + "' timed out after " + e.Duration.String()
}

// RecoveryError represents a panic recovery
type RecoveryError struct {
	Panic   any
	Command string
	Stack   []byte
}

func (e *RecoveryError) Error() string {
	return "command '" + e.Command + "' panicked: " + toString(e.Panic)
}

// Configuration types

// LogFormat represents log formats
type LogFormat int

const (
	LogFormatText LogFormat = iota
	LogFormatJSON
	LogFormatLogfmt
)

// MiddlewareConfig contains configuration for middleware behavior
type MiddlewareConfig struct {
	Logger           *log.Logger
	LogLevel         log.Level
	LogFormat        LogFormat
	IncludeArgs      bool
	PrintStack       bool
	StackSize        int
	DefaultTimeout   time.Duration
	CustomValidators map[string]ValidatorFunc
}

type MiddlewareOption func(config *MiddlewareConfig)

func DefaultConfig() *MiddlewareConfig {
	return &MiddlewareConfig{
		LogLevel:         log.InfoLevel,
		LogFormat:        LogFormatText,
		IncludeArgs:      true,
		PrintStack:       true,
		StackSize:        4096,
		DefaultTimeout:   30 * time.Second,
		CustomValidators: make(map[string]ValidatorFunc),
	}
}

// WithLogger routes middleware output through an existing logger instead of
// a fresh stderr logger.
func WithLogger(logger *log.Logger) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.Logger = logger
	}
}

func WithLogLevel(level log.Level) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.LogLevel = level
	}
}

func WithLogFormat(format LogFormat) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.LogFormat = format
	}
}

func WithArgs(enabled bool) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.IncludeArgs = enabled
	}
}

func WithTimeout(timeout time.Duration) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.DefaultTimeout = timeout
	}
}

func WithStackTrace(enabled bool) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.PrintStack = enabled
	}
}

func WithCustomValidators(validators map[string]ValidatorFunc) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		for name, fn := range validators {
			config.CustomValidators[name] = fn
		}
	}
}

// Utility functions

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return t
	case error:
		return t.Error()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

func commandName(inv Invocation) string {
	if inv == nil {
		return "unknown"
	}
	if path := inv.CommandPath(); path != "" {
		return path
	}
	return inv.Command()
}
