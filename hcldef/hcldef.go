// Package hcldef declares a command tree in HCL instead of Go:
//
//	command "tool" {
//	  description = "release tooling"
//
//	  option "verbose" {
//	    short  = "v"
//	    switch = true
//	  }
//
//	  action "deploy" {
//	    arguments = true
//
//	    option "env" {
//	      one_of = ["dev", "staging", "prod"]
//	    }
//	    option "replicas" {
//	      operator = "int"
//	    }
//	    option "region" {
//	      expr = lower(trimspace(value))
//	    }
//	  }
//	}
//
// Loading returns an *action.Builder so handlers and middleware can be
// attached before the tree is built.
package hcldef

import (
	"fmt"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/dzonerzy/go-action/action"
)

type document struct {
	Command actionBlock `hcl:"command,block"`
}

type actionBlock struct {
	Name        string        `hcl:"name,label"`
	Description string        `hcl:"description,optional"`
	Arguments   bool          `hcl:"arguments,optional"`
	Options     []optionBlock `hcl:"option,block"`
	Actions     []actionBlock `hcl:"action,block"`
}

type optionBlock struct {
	Name        string         `hcl:"name,label"`
	Short       string         `hcl:"short,optional"`
	Description string         `hcl:"description,optional"`
	Switch      bool           `hcl:"switch,optional"`
	Operator    string         `hcl:"operator,optional"`
	OneOf       []string       `hcl:"one_of,optional"`
	Expr        hcl.Expression `hcl:"expr,optional"`
}

// Option configures loading
type Option func(*loader)

// WithOperators resolves `operator` names against ops instead of
// action.DefaultOperators.
func WithOperators(ops *action.Operators) Option {
	return func(l *loader) {
		l.operators = ops
	}
}

type loader struct {
	operators *action.Operators
}

// LoadFile reads and decodes an HCL definitions file
func LoadFile(path string, options ...Option) (*action.Builder, error) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", path, diags)
	}
	return decode(file.Body, options)
}

// Parse decodes HCL source; filename is used in diagnostics only
func Parse(src []byte, filename string, options ...Option) (*action.Builder, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", filename, diags)
	}
	return decode(file.Body, options)
}

func decode(body hcl.Body, options []Option) (*action.Builder, error) {
	l := &loader{operators: action.DefaultOperators}
	for _, option := range options {
		option(l)
	}

	var doc document
	if diags := gohcl.DecodeBody(body, nil, &doc); diags.HasErrors() {
		return nil, fmt.Errorf("decode definitions: %w", diags)
	}

	root := action.New(doc.Command.Name).WithOperators(l.operators)
	if err := l.declare(root, doc.Command); err != nil {
		return nil, err
	}
	return root, nil
}

func (l *loader) declare(b *action.Builder, block actionBlock) error {
	if block.Name == "" {
		return fmt.Errorf("%s: action name cannot be empty", b.CommandPath())
	}
	b.Description(block.Description).Arguments(block.Arguments)

	for _, opt := range block.Options {
		if err := l.declareOption(b, opt); err != nil {
			return err
		}
	}
	for _, child := range block.Actions {
		if err := l.declare(b.Action(child.Name), child); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) declareOption(b *action.Builder, block optionBlock) error {
	ob := b.Option(block.Name).Description(block.Description)

	if block.Short != "" {
		r, size := utf8.DecodeRuneInString(block.Short)
		if size != len(block.Short) {
			return fmt.Errorf("%s: option %q: short must be a single character, got %q",
				b.CommandPath(), block.Name, block.Short)
		}
		ob.Short(r)
	}

	operator, err := l.operator(block)
	if err != nil {
		return fmt.Errorf("%s: option %q: %w", b.CommandPath(), block.Name, err)
	}
	if operator != nil {
		ob.Operator(operator)
	}
	if block.Switch {
		ob.Switch()
	}
	return nil
}

// operator picks the single operator form the block declares, or nil
func (l *loader) operator(block optionBlock) (action.ValueOperator, error) {
	hasExpr := exprDeclared(block.Expr)

	forms := 0
	for _, declared := range []bool{block.Operator != "", block.OneOf != nil, hasExpr} {
		if declared {
			forms++
		}
	}
	if forms > 1 {
		return nil, fmt.Errorf("operator, one_of and expr are mutually exclusive")
	}

	switch {
	case block.Operator != "":
		op, ok := l.operators.Lookup(block.Operator)
		if !ok {
			return nil, fmt.Errorf("unknown operator %q", block.Operator)
		}
		return op, nil
	case block.OneOf != nil:
		return action.OneOf(block.OneOf...), nil
	case hasExpr:
		return action.CompileExpression(block.Expr)
	}
	return nil, nil
}

// exprDeclared reports whether an optional expression attribute was set.
// gohcl fills an absent one with a static null.
func exprDeclared(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	if len(expr.Variables()) > 0 {
		return true
	}
	v, diags := expr.Value(nil)
	return diags.HasErrors() || !v.IsNull()
}
