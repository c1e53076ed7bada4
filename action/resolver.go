package action

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/dzonerzy/go-action/internal/fuzzy"
)

// Resolver turns ParsedInput into a CommandContext. A Resolver holds no
// per-call state and may be shared between goroutines.
type Resolver struct {
	logger         *log.Logger
	suggest        bool
	maxDistance    int
	maxSuggestions int
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// NewResolver creates a resolver. Without options it logs nothing and does
// not compute suggestions.
func NewResolver(options ...ResolverOption) *Resolver {
	r := &Resolver{
		logger:         log.New(io.Discard),
		maxDistance:    2,
		maxSuggestions: 3,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// WithLogger routes resolution tracing through logger (debug for path
// descents, warn for unbound options).
func WithLogger(logger *log.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSuggestions enables "did you mean" suggestions on illegal arguments,
// considering candidates within maxDistance edits.
func WithSuggestions(enabled bool, maxDistance int) ResolverOption {
	return func(r *Resolver) {
		r.suggest = enabled
		if maxDistance > 0 {
			r.maxDistance = maxDistance
		}
	}
}

// WithMaxSuggestions caps the number of suggestions attached to an error
func WithMaxSuggestions(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.maxSuggestions = n
		}
	}
}

// Logger returns the resolver's logger
func (r *Resolver) Logger() *log.Logger { return r.logger }

// Validate walks the action path from root and returns the deepest matched
// action along with the path tokens it took as positional arguments.
func (r *Resolver) Validate(root *Config, in ParsedInput) (*Config, []string, error) {
	node, pathArgs, illegal := walkPath(root, in, func(from, to *Config) {
		r.logger.Debug("descend", "from", from.CommandPath(), "action", to.name)
	})
	if illegal != nil {
		if r.suggest {
			illegal.Suggestions = fuzzy.FindSuggestions(illegal.Token, node.ChildNames(), r.maxDistance, r.maxSuggestions)
		}
		r.logger.Debug("illegal argument", "action", illegal.Action, "token", illegal.Token)
		return nil, nil, illegal
	}
	if len(pathArgs) > 0 {
		r.logger.Debug("path tokens taken as arguments", "action", node.CommandPath(), "count", len(pathArgs))
	}
	return node, pathArgs, nil
}

// Bind binds raw options against cfg. The result keeps input order.
func (r *Resolver) Bind(cfg *Config, options []RawOption) ([]CommandOption, error) {
	return bindOptions(cfg, options, func(pair RawOption) {
		r.logger.Warn("unbound option", "action", cfg.CommandPath(), "option", pair.Name)
	})
}

// Build assembles the context for cfg. pathArgs come ahead of in.Arguments.
func (r *Resolver) Build(cfg *Config, in ParsedInput, pathArgs []string) (*CommandContext, error) {
	bound, err := r.Bind(cfg, in.Options)
	if err != nil {
		r.logger.Debug("bind failed", "action", cfg.CommandPath(), "err", err)
		return nil, err
	}

	arguments := make([]string, 0, len(pathArgs)+len(in.Arguments))
	arguments = append(arguments, pathArgs...)
	arguments = append(arguments, in.Arguments...)
	return newCommandContext(cfg, bound, arguments), nil
}

// Resolve validates the action path, binds options and builds the context.
// Validation failures return before any operator runs.
func (r *Resolver) Resolve(root *Config, in ParsedInput) (*CommandContext, error) {
	cfg, pathArgs, err := r.Validate(root, in)
	if err != nil {
		return nil, err
	}
	cc, err := r.Build(cfg, in, pathArgs)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("resolved", "action", cfg.CommandPath(), "options", len(cc.optionOrder), "args", len(cc.arguments))
	return cc, nil
}

var defaultResolver = NewResolver()

// Validate runs Resolver.Validate with a silent resolver
func Validate(root *Config, in ParsedInput) (*Config, []string, error) {
	return defaultResolver.Validate(root, in)
}

// Bind runs Resolver.Bind with a silent resolver
func Bind(cfg *Config, options []RawOption) ([]CommandOption, error) {
	return defaultResolver.Bind(cfg, options)
}

// Build runs Resolver.Build with a silent resolver
func Build(cfg *Config, in ParsedInput, pathArgs []string) (*CommandContext, error) {
	return defaultResolver.Build(cfg, in, pathArgs)
}

// Resolve runs Resolver.Resolve with a silent resolver
func Resolve(root *Config, in ParsedInput) (*CommandContext, error) {
	return defaultResolver.Resolve(root, in)
}
