package action

import "fmt"

// OptionConfig is an option declared on one action. Its name is unique within
// the owning action.
type OptionConfig struct {
	name        string
	short       rune
	description string
	operator    ValueOperator
	isSwitch    bool
}

// Name returns the option name as matched against parsed input
func (o *OptionConfig) Name() string { return o.name }

// Short returns the single-character alias, or 0 when none is declared
func (o *OptionConfig) Short() rune { return o.short }

// Description returns the option description
func (o *OptionConfig) Description() string { return o.description }

// IsSwitch reports whether the option takes no value on the command line
func (o *OptionConfig) IsSwitch() bool { return o.isSwitch }

// Operator returns the declared operator, or Identity when none was declared
func (o *OptionConfig) Operator() ValueOperator {
	if o.operator == nil {
		return Identity
	}
	return o.operator
}

// HasOperator reports whether a non-identity operator was declared
func (o *OptionConfig) HasOperator() bool { return o.operator != nil }

// Operate runs the option's operator over a raw value. Without a declared
// operator the raw value is returned unchanged.
func (o *OptionConfig) Operate(raw string) (any, error) {
	if o.operator == nil {
		return raw, nil
	}
	return o.operator.Operate(raw)
}

// OptionBuilder provides type-safe fluent API for option configuration
type OptionBuilder struct {
	option *OptionConfig
	parent *Builder
}

// Short sets a short option alias (single character)
func (ob *OptionBuilder) Short(short rune) *OptionBuilder {
	ob.parent.mutable()
	cfg := ob.parent.config
	if existing, taken := cfg.shortOptions[short]; taken && existing != ob.option {
		ob.parent.fail(fmt.Errorf("action %q: short alias -%c already used by option %q",
			cfg.CommandPath(), short, existing.name))
		return ob
	}
	if ob.option.short != 0 {
		delete(cfg.shortOptions, ob.option.short)
	}
	ob.option.short = short
	cfg.shortOptions[short] = ob.option
	return ob
}

// Description sets the option description
func (ob *OptionBuilder) Description(description string) *OptionBuilder {
	ob.parent.mutable()
	ob.option.description = description
	return ob
}

// Switch marks the option as value-less. Unless an operator was set, its
// value is coerced with the "bool" operator.
func (ob *OptionBuilder) Switch() *OptionBuilder {
	ob.parent.mutable()
	ob.option.isSwitch = true
	if ob.option.operator == nil {
		ob.option.operator = Bool
	}
	return ob
}

// Operator sets the value operator
func (ob *OptionBuilder) Operator(op ValueOperator) *OptionBuilder {
	ob.parent.mutable()
	ob.option.operator = op
	return ob
}

// Func sets an inline operator function
func (ob *OptionBuilder) Func(fn func(raw string) (any, error)) *OptionBuilder {
	if fn == nil {
		return ob.Operator(nil)
	}
	return ob.Operator(OperatorFunc(fn))
}

// Coerce sets the operator registered under name in the tree's registry.
// An unknown name is reported by Build.
func (ob *OptionBuilder) Coerce(name string) *OptionBuilder {
	ob.parent.mutable()
	op, ok := ob.parent.root.operators.Lookup(name)
	if !ok {
		ob.parent.fail(fmt.Errorf("option %q: unknown operator %q", ob.option.name, name))
		return ob
	}
	ob.option.operator = op
	return ob
}

// OneOf restricts the option to a fixed set of values
func (ob *OptionBuilder) OneOf(values ...string) *OptionBuilder {
	return ob.Operator(OneOf(values...))
}

// Expr sets an HCL expression operator, e.g. `upper(trimspace(value))`.
// A compile error is reported by Build.
func (ob *OptionBuilder) Expr(source string) *OptionBuilder {
	ob.parent.mutable()
	op, err := Expression(source)
	if err != nil {
		ob.parent.fail(fmt.Errorf("option %q: %w", ob.option.name, err))
		return ob
	}
	ob.option.operator = op
	return ob
}

// Back returns to the action builder for continued chaining
func (ob *OptionBuilder) Back() *Builder {
	return ob.parent
}
