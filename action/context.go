package action

import (
	"time"
)

// CommandContext is the resolved result of one invocation, handed to the
// action's handler. It is never modified after construction.
type CommandContext struct {
	config      *Config
	options     map[string]CommandOption
	optionOrder []string // first appearance
	arguments   []string
}

func newCommandContext(cfg *Config, bound []CommandOption, arguments []string) *CommandContext {
	cc := &CommandContext{
		config:    cfg,
		options:   make(map[string]CommandOption, len(bound)),
		arguments: arguments,
	}
	for _, opt := range bound {
		if _, seen := cc.options[opt.name]; !seen {
			cc.optionOrder = append(cc.optionOrder, opt.name)
		}
		cc.options[opt.name] = opt
	}
	return cc
}

// Config returns the resolved action
func (c *CommandContext) Config() *Config { return c.config }

// Command returns the name of the resolved command or action
func (c *CommandContext) Command() string { return c.config.name }

// ActionName returns the name of the resolved action
func (c *CommandContext) ActionName() string { return c.config.name }

// CommandPath returns the names from the root down to the resolved action,
// joined by spaces.
func (c *CommandContext) CommandPath() string { return c.config.CommandPath() }

// IsSubAction reports whether the resolved action has a parent
func (c *CommandContext) IsSubAction() bool { return c.config.parent != nil }

// Option access

// Option returns the named option. An option that was never given comes back
// as an empty CommandOption rather than an error.
func (c *CommandContext) Option(name string) CommandOption {
	if opt, ok := c.options[name]; ok {
		return opt
	}
	return CommandOption{name: name}
}

// OptionValue returns the coerced value of the named option, or nil. Slice
// and map values are copies.
func (c *CommandContext) OptionValue(name string) any {
	return c.options[name].Value()
}

// HasOption reports whether the option was given, whatever its value
func (c *CommandContext) HasOption(name string) bool {
	_, ok := c.options[name]
	return ok
}

// Options returns one entry per option name in order of first appearance,
// each carrying the last value given for that name.
func (c *CommandContext) Options() []CommandOption {
	out := make([]CommandOption, 0, len(c.optionOrder))
	for _, name := range c.optionOrder {
		out = append(out, c.options[name])
	}
	return out
}

// OptionNames returns the given option names in order of first appearance
func (c *CommandContext) OptionNames() []string {
	return append([]string(nil), c.optionOrder...)
}

// String returns a string-valued option
func (c *CommandContext) String(name string) (string, bool) {
	v, ok := c.OptionValue(name).(string)
	return v, ok
}

// MustString returns a string-valued option or defaultValue
func (c *CommandContext) MustString(name, defaultValue string) string {
	if v, ok := c.String(name); ok {
		return v
	}
	return defaultValue
}

// Int returns an int-valued option
func (c *CommandContext) Int(name string) (int, bool) {
	v, ok := c.OptionValue(name).(int)
	return v, ok
}

// MustInt returns an int-valued option or defaultValue
func (c *CommandContext) MustInt(name string, defaultValue int) int {
	if v, ok := c.Int(name); ok {
		return v
	}
	return defaultValue
}

// Bool returns a bool-valued option
func (c *CommandContext) Bool(name string) (bool, bool) {
	v, ok := c.OptionValue(name).(bool)
	return v, ok
}

// MustBool returns a bool-valued option or defaultValue
func (c *CommandContext) MustBool(name string, defaultValue bool) bool {
	if v, ok := c.Bool(name); ok {
		return v
	}
	return defaultValue
}

// Duration returns a duration-valued option
func (c *CommandContext) Duration(name string) (time.Duration, bool) {
	v, ok := c.OptionValue(name).(time.Duration)
	return v, ok
}

// MustDuration returns a duration-valued option or defaultValue
func (c *CommandContext) MustDuration(name string, defaultValue time.Duration) time.Duration {
	if v, ok := c.Duration(name); ok {
		return v
	}
	return defaultValue
}

// Float returns a float-valued option
func (c *CommandContext) Float(name string) (float64, bool) {
	v, ok := c.OptionValue(name).(float64)
	return v, ok
}

// StringSlice returns a []string-valued option
func (c *CommandContext) StringSlice(name string) ([]string, bool) {
	v, ok := c.OptionValue(name).([]string)
	return v, ok
}

// IntSlice returns a []int-valued option
func (c *CommandContext) IntSlice(name string) ([]int, bool) {
	v, ok := c.OptionValue(name).([]int)
	return v, ok
}

// Arguments

// Arguments returns the positional arguments: tokens left over from the
// action path first, then the tokenizer's residual arguments.
func (c *CommandContext) Arguments() []string {
	return append([]string(nil), c.arguments...)
}

// NArgs returns the number of positional arguments
func (c *CommandContext) NArgs() int { return len(c.arguments) }

// Arg returns the i-th positional argument, or "" when out of range
func (c *CommandContext) Arg(i int) string {
	if i < 0 || i >= len(c.arguments) {
		return ""
	}
	return c.arguments[i]
}
