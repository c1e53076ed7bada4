package middleware

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger creates a middleware that logs each handler dispatch: the resolved
// command path, argument count, duration and error.
func Logger(options ...MiddlewareOption) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}
	logger := newLogger(config)

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, inv Invocation) error {
			command := commandName(inv)
			start := time.Now()

			logger.Debug("dispatch start", "command", command)

			err := next(ctx, inv)

			fields := []any{
				"command", command,
				"duration", time.Since(start),
			}
			if config.IncludeArgs {
				fields = append(fields, "args", inv.Arguments())
			} else {
				fields = append(fields, "arg_count", len(inv.Arguments()))
			}
			if inv.IsSubAction() {
				fields = append(fields, "action", inv.ActionName())
			}

			if err != nil {
				logger.Error("dispatch failed", append(fields, "err", err)...)
				return err
			}
			logger.Info("dispatch done", fields...)
			return nil
		}
	}
}

// newLogger returns the configured logger, or a stderr logger built from the
// level and format settings.
func newLogger(config *MiddlewareConfig) *log.Logger {
	if config.Logger != nil {
		return config.Logger
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "action",
		Level:           config.LogLevel,
		ReportTimestamp: true,
	})
	switch config.LogFormat { // exhaustive over LogFormat
	case LogFormatJSON:
		logger.SetFormatter(log.JSONFormatter)
	case LogFormatLogfmt:
		logger.SetFormatter(log.LogfmtFormatter)
	case LogFormatText:
		logger.SetFormatter(log.TextFormatter)
	}
	return logger
}

// DebugLogger logs dispatch start and completion
func DebugLogger() Middleware {
	return Logger(WithLogLevel(log.DebugLevel))
}

// ErrorLogger logs failed dispatches only
func ErrorLogger() Middleware {
	return Logger(WithLogLevel(log.ErrorLevel))
}

// JSONLogger logs dispatches as JSON lines
func JSONLogger() Middleware {
	return Logger(WithLogFormat(LogFormatJSON))
}
