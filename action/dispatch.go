package action

import (
	"context"
	"sort"

	"github.com/dzonerzy/go-action/internal/fuzzy"
	"github.com/dzonerzy/go-action/middleware"
)

// HandlerFunc handles a resolved invocation
type HandlerFunc func(ctx context.Context, cc *CommandContext) error

// Dispatcher resolves parsed input against a tree and runs the handler of the
// resolved action, or of its nearest ancestor that has one, inside the
// middleware declared from the root down to that action.
type Dispatcher struct {
	root       *Config
	resolver   *Resolver
	strict     bool
	middleware middleware.MiddlewareChain
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// NewDispatcher creates a dispatcher for a built tree
func NewDispatcher(root *Config, options ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{root: root, resolver: defaultResolver}
	for _, option := range options {
		option(d)
	}
	return d
}

// WithResolver sets the resolver (logging, suggestions)
func WithResolver(r *Resolver) DispatcherOption {
	return func(d *Dispatcher) {
		if r != nil {
			d.resolver = r
		}
	}
}

// StrictOptions rejects options the resolved action does not declare
func StrictOptions(enabled bool) DispatcherOption {
	return func(d *Dispatcher) {
		d.strict = enabled
	}
}

// WithMiddleware adds middleware that wraps every dispatch, outside the
// middleware declared on the tree.
func WithMiddleware(mw ...middleware.Middleware) DispatcherOption {
	return func(d *Dispatcher) {
		d.middleware = d.middleware.Use(mw...)
	}
}

// Root returns the dispatcher's tree
func (d *Dispatcher) Root() *Config { return d.root }

// Resolve resolves in and applies the strict-option policy without running
// a handler.
func (d *Dispatcher) Resolve(in ParsedInput) (*CommandContext, error) {
	cc, err := d.resolver.Resolve(d.root, in)
	if err != nil {
		return nil, err
	}
	if d.strict {
		if err := d.checkStrict(cc); err != nil {
			return nil, err
		}
	}
	return cc, nil
}

// Dispatch resolves in and runs the matching handler
func (d *Dispatcher) Dispatch(ctx context.Context, in ParsedInput) error {
	cc, err := d.Resolve(in)
	if err != nil {
		return err
	}
	return d.Run(ctx, cc)
}

// Run executes the handler for an already resolved context
func (d *Dispatcher) Run(ctx context.Context, cc *CommandContext) error {
	handler := findHandler(cc.config)
	if handler == nil {
		return &NoHandlerError{Action: cc.CommandPath()}
	}

	chain := d.middleware.Use(collectMiddleware(cc.config)...)
	final := chain.Apply(func(ctx context.Context, inv middleware.Invocation) error {
		if resolved, ok := inv.(*CommandContext); ok {
			return handler(ctx, resolved)
		}
		return handler(ctx, cc)
	})
	return final(ctx, cc)
}

func (d *Dispatcher) checkStrict(cc *CommandContext) error {
	for _, opt := range cc.Options() {
		if opt.bound {
			continue
		}
		declared := make([]string, 0, len(cc.config.optionOrder))
		declared = append(declared, cc.config.optionOrder...)
		sort.Strings(declared)
		return &UnknownOptionError{
			Option:      opt.name,
			Action:      cc.CommandPath(),
			Suggestions: fuzzy.FindSuggestions(opt.name, declared, d.resolver.maxDistance, d.resolver.maxSuggestions),
		}
	}
	return nil
}

func findHandler(cfg *Config) HandlerFunc {
	for node := cfg; node != nil; node = node.parent {
		if node.handler != nil {
			return node.handler
		}
	}
	return nil
}

// collectMiddleware returns middleware from the root down to cfg
func collectMiddleware(cfg *Config) []middleware.Middleware {
	var levels [][]middleware.Middleware
	for node := cfg; node != nil; node = node.parent {
		levels = append(levels, node.middleware)
	}
	var out []middleware.Middleware
	for i := len(levels) - 1; i >= 0; i-- {
		out = append(out, levels[i]...)
	}
	return out
}
