package middleware

import (
	"context"
	"time"
)

// Timeout creates a middleware that bounds handler execution. The handler
// receives a derived context; when the deadline passes first a *TimeoutError
// is returned and the handler is left to observe ctx.Done().
func Timeout(duration time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, inv Invocation) error {
			if duration <= 0 {
				return next(ctx, inv)
			}

			timeoutCtx, cancel := context.WithTimeout(ctx, duration)
			defer cancel()

			resultChan := make(chan error, 1)
			go func() {
				defer func() {
					if r := recover(); r != nil {
						resultChan <- &RecoveryError{
							Panic:   r,
							Command: commandName(inv),
						}
					}
				}()
				resultChan <- next(timeoutCtx, inv)
			}()

			select {
			case err := <-resultChan:
				return err
			case <-timeoutCtx.Done():
				if ctx.Err() != nil {
					// Canceled by the caller, not by our deadline.
					return ctx.Err()
				}
				return &TimeoutError{
					Duration: duration,
					Command:  commandName(inv),
				}
			}
		}
	}
}

// TimeoutWithDefault creates a timeout middleware with the default timeout from config
func TimeoutWithDefault(options ...MiddlewareOption) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}
	return Timeout(config.DefaultTimeout)
}

// TimeoutPerCommand applies per-command timeouts keyed by command path, with a
// default for commands not listed.
func TimeoutPerCommand(commandTimeouts map[string]time.Duration, defaultTimeout time.Duration) Middleware {
	return DynamicTimeout(func(inv Invocation) time.Duration {
		if d, ok := commandTimeouts[commandName(inv)]; ok {
			return d
		}
		return defaultTimeout
	})
}

// DynamicTimeout computes the timeout from the invocation
func DynamicTimeout(timeoutFunc func(inv Invocation) time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, inv Invocation) error {
			return Timeout(timeoutFunc(inv))(next)(ctx, inv)
		}
	}
}

// TimeoutFromOption reads the timeout from a duration-valued option, falling
// back to defaultTimeout when the option is absent or not a time.Duration.
func TimeoutFromOption(optionName string, defaultTimeout time.Duration) Middleware {
	return DynamicTimeout(func(inv Invocation) time.Duration {
		if d, ok := inv.OptionValue(optionName).(time.Duration); ok && d > 0 {
			return d
		}
		return defaultTimeout
	})
}
