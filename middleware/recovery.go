package middleware

import (
	"context"
	"runtime"
	"sync"
)

// Recovery creates a middleware that recovers from panics raised by a handler
// and turns them into a *RecoveryError.
func Recovery(options ...MiddlewareOption) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}
	logger := newLogger(config)

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, inv Invocation) (err error) {
			defer func() {
				if r := recover(); r != nil {
					recoveryErr := &RecoveryError{
						Panic:   r,
						Command: commandName(inv),
						Stack:   captureStack(config),
					}
					if config.PrintStack && len(recoveryErr.Stack) > 0 {
						logger.Error("handler panicked",
							"command", recoveryErr.Command,
							"panic", toString(r),
							"stack", string(recoveryErr.Stack))
					}
					err = recoveryErr
				}
			}()

			return next(ctx, inv)
		}
	}
}

// RecoveryWithHandler creates a recovery middleware with a custom panic handler
func RecoveryWithHandler(
	handler func(panicVal any, command string, stack []byte) error,
	options ...MiddlewareOption,
) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, inv Invocation) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = handler(r, commandName(inv), captureStack(config))
				}
			}()

			return next(ctx, inv)
		}
	}
}

// RecoveryToError converts panics to errors without logging stack traces
func RecoveryToError() Middleware {
	return Recovery(WithStackTrace(false))
}

func captureStack(config *MiddlewareConfig) []byte {
	if !config.PrintStack || config.StackSize <= 0 {
		return nil
	}
	stack := make([]byte, config.StackSize)
	return stack[:runtime.Stack(stack, false)]
}

// RecoveryStats counts recovered panics per command
type RecoveryStats struct {
	mu        sync.Mutex
	Total     int
	ByCommand map[string]int
}

func NewRecoveryStats() *RecoveryStats {
	return &RecoveryStats{ByCommand: make(map[string]int)}
}

// Count returns the number of panics recovered for a command path
func (s *RecoveryStats) Count(command string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ByCommand[command]
}

// RecoveryWithStats recovers panics like RecoveryToError and records them
func RecoveryWithStats(stats *RecoveryStats, options ...MiddlewareOption) Middleware {
	options = append([]MiddlewareOption{WithStackTrace(false)}, options...)
	return RecoveryWithHandler(func(panicVal any, command string, stack []byte) error {
		stats.mu.Lock()
		stats.Total++
		stats.ByCommand[command]++
		stats.mu.Unlock()
		return &RecoveryError{Panic: panicVal, Command: command, Stack: stack}
	}, options...)
}
