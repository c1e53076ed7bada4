package action

import (
	"maps"
	"slices"
)

// CommandOption is one supplied option after binding. The zero value (with
// only a name) stands for an option that was never given.
type CommandOption struct {
	name  string
	raw   string
	value any
	bound bool
	given bool
}

// Name returns the option name
func (o CommandOption) Name() string { return o.name }

// Value returns the coerced value, nil when the option was not given.
// Slice and map values are copies; changing them leaves the option intact.
func (o CommandOption) Value() any { return detach(o.value) }

// Raw returns the value as it appeared in the parsed input
func (o CommandOption) Raw() string { return o.raw }

// IsBound reports whether the option matched a declared option
func (o CommandOption) IsBound() bool { return o.bound }

// IsGiven reports whether the option appeared in the parsed input
func (o CommandOption) IsGiven() bool { return o.given }

// bindOptions pairs each raw option with its declaration on cfg and runs the
// declared operator. Input order is kept, duplicates included. Undeclared
// names bind to their raw value and are reported through unbound.
func bindOptions(cfg *Config, raw []RawOption, unbound func(RawOption)) ([]CommandOption, error) {
	out := make([]CommandOption, 0, len(raw))
	for _, pair := range raw {
		decl := cfg.Option(pair.Name)
		if decl == nil {
			if unbound != nil {
				unbound(pair)
			}
			out = append(out, CommandOption{name: pair.Name, raw: pair.Value, value: pair.Value, given: true})
			continue
		}

		value, err := decl.Operate(pair.Value)
		if err != nil {
			return nil, &OperatorError{Option: pair.Name, Value: pair.Value, Cause: err}
		}
		out = append(out, CommandOption{name: pair.Name, raw: pair.Value, value: value, bound: true, given: true})
	}
	return out, nil
}

// detach copies the composite values operators produce so callers never
// share backing storage with a context.
func detach(v any) any {
	switch t := v.(type) {
	case []string:
		return slices.Clone(t)
	case []int:
		return slices.Clone(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = detach(e)
		}
		return out
	case map[string]any:
		out := maps.Clone(t)
		for k, e := range out {
			out[k] = detach(e)
		}
		return out
	default:
		return v
	}
}
