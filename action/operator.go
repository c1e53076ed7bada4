package action

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ValueOperator turns an option's raw string into its final value.
//
// The interface is closed: a ValueOperator is either an OperatorFunc or a
// NamedOperator taken from an Operators registry. Operators must be
// deterministic and must not retain or mutate shared state.
type ValueOperator interface {
	Operate(raw string) (any, error)
	sealed()
}

// OperatorFunc is an inline operator
type OperatorFunc func(raw string) (any, error)

// Operate calls f(raw)
func (f OperatorFunc) Operate(raw string) (any, error) { return f(raw) }

func (OperatorFunc) sealed() {}

// NamedOperator is an operator registered under a name
type NamedOperator struct {
	name string
	fn   OperatorFunc
}

// Name returns the registry name
func (n NamedOperator) Name() string { return n.name }

// Operate runs the registered function
func (n NamedOperator) Operate(raw string) (any, error) { return n.fn(raw) }

func (NamedOperator) sealed() {}

func (n NamedOperator) String() string { return n.name }

// ErrOperatorExists is returned when registering a name twice
var ErrOperatorExists = errors.New("operator already registered")

// Operators is a registry of named operators. It is safe for concurrent use;
// builders consult it only while a tree is being declared.
type Operators struct {
	mu  sync.RWMutex
	ops map[string]NamedOperator
}

// NewOperators returns a registry preloaded with the built-in operators:
// identity, bool, int, float, duration, string-slice and int-slice.
func NewOperators() *Operators {
	r := &Operators{ops: make(map[string]NamedOperator)}
	for name, fn := range builtinOperators() {
		r.ops[name] = NamedOperator{name: name, fn: fn}
	}
	return r
}

// DefaultOperators is the registry used by New and Named
var DefaultOperators = NewOperators()

// Register adds an operator under name
func (r *Operators) Register(name string, fn func(raw string) (any, error)) error {
	if name == "" {
		return errors.New("operator name cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("operator %q: nil function", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ops[name]; exists {
		return fmt.Errorf("%w: %s", ErrOperatorExists, name)
	}
	r.ops[name] = NamedOperator{name: name, fn: fn}
	return nil
}

// MustRegister is Register that panics on error
func (r *Operators) MustRegister(name string, fn func(raw string) (any, error)) *Operators {
	if err := r.Register(name, fn); err != nil {
		panic("action: " + err.Error())
	}
	return r
}

// Lookup returns the operator registered under name
func (r *Operators) Lookup(name string) (NamedOperator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[name]
	return op, ok
}

// Names returns the registered names, sorted
func (r *Operators) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Named returns the operator registered in DefaultOperators under name
func Named(name string) (ValueOperator, error) {
	op, ok := DefaultOperators.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown operator %q", name)
	}
	return op, nil
}

// Built-in operators usable directly as values

var (
	Identity ValueOperator = NamedOperator{name: "identity", fn: identity}
	Bool     ValueOperator = NamedOperator{name: "bool", fn: parseBoolValue}
	Int      ValueOperator = NamedOperator{name: "int", fn: parseIntValue}
	Float    ValueOperator = NamedOperator{name: "float", fn: parseFloatValue}
	Duration ValueOperator = NamedOperator{name: "duration", fn: parseDurationValue}
)

func identity(raw string) (any, error) { return raw, nil }

// OneOf returns an operator that passes raw through when it is one of values
// and fails otherwise.
func OneOf(values ...string) ValueOperator {
	allowed := append([]string(nil), values...)
	return OperatorFunc(func(raw string) (any, error) {
		for _, v := range allowed {
			if raw == v {
				return raw, nil
			}
		}
		return nil, fmt.Errorf("must be one of: %s", strings.Join(allowed, ", "))
	})
}

// Map returns an operator translating raw through a lookup table. Keys
// missing from the table fail.
func Map(table map[string]any) ValueOperator {
	copied := make(map[string]any, len(table))
	keys := make([]string, 0, len(table))
	for k, v := range table {
		copied[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return OperatorFunc(func(raw string) (any, error) {
		if v, ok := copied[raw]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("must be one of: %s", strings.Join(keys, ", "))
	})
}

// Chain runs operators in order; each one after the first receives the
// previous result formatted with fmt.Sprint.
func Chain(ops ...ValueOperator) ValueOperator {
	return OperatorFunc(func(raw string) (any, error) {
		var value any = raw
		for i, op := range ops {
			in := raw
			if i > 0 {
				in = fmt.Sprint(value)
			}
			out, err := op.Operate(in)
			if err != nil {
				return nil, err
			}
			value = out
		}
		return value, nil
	})
}
