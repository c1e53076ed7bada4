// Package action resolves a tokenized command-line invocation against a
// declared tree of nested actions and produces an immutable CommandContext
// for the action's handler.
//
// A tree is declared with the fluent Builder and frozen by Build. Resolution
// (Resolve, or Validate followed by Build) is a pure, synchronous
// transformation of (tree, ParsedInput) into a *CommandContext or an error.
package action

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dzonerzy/go-action/middleware"
)

// Config is a node in a declared command tree: the root command or one of
// its nested actions. A Config is only obtainable through Builder.Build and
// is read-only from then on, so one tree may serve concurrent resolutions.
type Config struct {
	name             string
	description      string
	acceptsArguments bool
	options          map[string]*OptionConfig
	optionOrder      []string
	shortOptions     map[rune]*OptionConfig
	children         map[string]*Config
	childOrder       []string
	parent           *Config // non-owning; only answers "is this a sub-action"
	handler          HandlerFunc
	middleware       []middleware.Middleware
}

func newConfig(name string, parent *Config) *Config {
	return &Config{
		name:         name,
		options:      make(map[string]*OptionConfig),
		shortOptions: make(map[rune]*OptionConfig),
		children:     make(map[string]*Config),
		parent:       parent,
	}
}

// Name returns the action name (the command name for the root)
func (c *Config) Name() string { return c.name }

// Description returns the action description
func (c *Config) Description() string { return c.description }

// AcceptsArguments reports whether positional arguments are legal here
func (c *Config) AcceptsArguments() bool { return c.acceptsArguments }

// Parent returns the enclosing action, or nil for the root
func (c *Config) Parent() *Config { return c.parent }

// HasParent reports whether this node is a sub-action
func (c *Config) HasParent() bool { return c.parent != nil }

// Root walks parent links up to the root command
func (c *Config) Root() *Config {
	node := c
	for node.parent != nil {
		node = node.parent
	}
	return node
}

// Path returns the names from the root down to this node
func (c *Config) Path() []string {
	var path []string
	for node := c; node != nil; node = node.parent {
		path = append(path, node.name)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// CommandPath returns Path joined by spaces, e.g. "tool deploy"
func (c *Config) CommandPath() string {
	return strings.Join(c.Path(), " ")
}

// Child returns the direct child action with the given name
func (c *Config) Child(name string) (*Config, bool) {
	child, ok := c.children[name]
	return child, ok
}

// Children returns the direct child actions in declaration order
func (c *Config) Children() []*Config {
	out := make([]*Config, 0, len(c.childOrder))
	for _, name := range c.childOrder {
		out = append(out, c.children[name])
	}
	return out
}

// ChildNames returns the names of the direct child actions in declaration order
func (c *Config) ChildNames() []string {
	return append([]string(nil), c.childOrder...)
}

// Option returns the declared option with the given name, or nil
func (c *Config) Option(name string) *OptionConfig {
	return c.options[name]
}

// HasOption reports whether an option with the given name is declared here
func (c *Config) HasOption(name string) bool {
	_, ok := c.options[name]
	return ok
}

// ShortOption returns the declared option with the given short alias, or nil
func (c *Config) ShortOption(short rune) *OptionConfig {
	return c.shortOptions[short]
}

// Options returns the declared options in declaration order
func (c *Config) Options() []*OptionConfig {
	out := make([]*OptionConfig, 0, len(c.optionOrder))
	for _, name := range c.optionOrder {
		out = append(out, c.options[name])
	}
	return out
}

// Handler returns the handler registered on this node, or nil
func (c *Config) Handler() HandlerFunc { return c.handler }

// Builder provides fluent API for declaring a command tree
type Builder struct {
	config    *Config
	parent    *Builder
	root      *Builder
	operators *Operators
	errs      []error
	built     bool
}

// New starts a command tree whose root command has the given name
func New(name string) *Builder {
	b := &Builder{
		config:    newConfig(name, nil),
		operators: DefaultOperators,
	}
	b.root = b
	if name == "" {
		b.fail(errors.New("command name cannot be empty"))
	}
	return b
}

func (b *Builder) fail(err error) {
	b.root.errs = append(b.root.errs, err)
}

func (b *Builder) mutable() {
	if b.root.built {
		panic("action: command tree is frozen after Build")
	}
}

// Configuration methods

// WithOperators sets the registry used to resolve named operators for the
// whole tree. Call it before declaring options that use Coerce.
func (b *Builder) WithOperators(ops *Operators) *Builder {
	b.mutable()
	if ops != nil {
		b.root.operators = ops
	}
	return b
}

// Description sets the description for the current action
func (b *Builder) Description(description string) *Builder {
	b.mutable()
	b.config.description = description
	return b
}

// AcceptArguments enables positional arguments for the current action
func (b *Builder) AcceptArguments() *Builder {
	return b.Arguments(true)
}

// Arguments sets the argument-acceptance policy for the current action
func (b *Builder) Arguments(enabled bool) *Builder {
	b.mutable()
	b.config.acceptsArguments = enabled
	return b
}

// Handler sets the handler run when this action is resolved
func (b *Builder) Handler(fn HandlerFunc) *Builder {
	b.mutable()
	b.config.handler = fn
	return b
}

// Use adds middleware that wraps handlers dispatched at or below this action
func (b *Builder) Use(middleware ...middleware.Middleware) *Builder {
	b.mutable()
	b.config.middleware = append(b.config.middleware, middleware...)
	return b
}

// Option declares an option on the current action. Declaring the same name
// again replaces the earlier definition in place.
func (b *Builder) Option(name string) *OptionBuilder {
	b.mutable()
	if name == "" {
		b.fail(fmt.Errorf("action %q: option name cannot be empty", b.config.CommandPath()))
	}
	opt := &OptionConfig{name: name}
	if prev, exists := b.config.options[name]; exists {
		if prev.short != 0 {
			delete(b.config.shortOptions, prev.short)
		}
	} else {
		b.config.optionOrder = append(b.config.optionOrder, name)
	}
	b.config.options[name] = opt
	return &OptionBuilder{option: opt, parent: b}
}

// Switch declares a value-less option coerced to a bool
func (b *Builder) Switch(name string) *OptionBuilder {
	return b.Option(name).Switch()
}

// Action declares a child action and returns its builder. Declaring an
// existing name returns the existing child's builder.
func (b *Builder) Action(name string) *Builder {
	b.mutable()
	if name == "" {
		b.fail(fmt.Errorf("action %q: child action name cannot be empty", b.config.CommandPath()))
	}
	child, exists := b.config.children[name]
	if !exists {
		child = newConfig(name, b.config)
		b.config.children[name] = child
		b.config.childOrder = append(b.config.childOrder, name)
	}
	return &Builder{config: child, parent: b, root: b.root}
}

// Builder navigation

// Up returns the builder of the enclosing action (itself for the root)
func (b *Builder) Up() *Builder {
	if b.parent == nil {
		return b
	}
	return b.parent
}

// Root returns the root command builder
func (b *Builder) Root() *Builder {
	return b.root
}

// Name returns the name of the action being declared
func (b *Builder) Name() string { return b.config.name }

// CommandPath returns the space separated path of the action being declared
func (b *Builder) CommandPath() string { return b.config.CommandPath() }

// Build freezes the whole tree and returns its root. Any builder in the tree
// may be used. Declaration errors collected along the way are returned
// joined; the tree is unusable in that case.
func (b *Builder) Build() (*Config, error) {
	root := b.root
	if len(root.errs) > 0 {
		return nil, errors.Join(root.errs...)
	}
	root.built = true
	return root.config, nil
}

// MustBuild is Build that panics on declaration errors
func (b *Builder) MustBuild() *Config {
	cfg, err := b.Build()
	if err != nil {
		panic("action: " + err.Error())
	}
	return cfg
}
