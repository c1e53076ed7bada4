package action

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ExprValueName is the only variable visible to an expression operator
const ExprValueName = "value"

var errNullResult = errors.New("expression produced null")

// exprFunctions is the function table available to expressions. The table is
// never written after init, so concurrent evaluations may share it.
var exprFunctions = map[string]function.Function{
	"upper":     stdlib.UpperFunc,
	"lower":     stdlib.LowerFunc,
	"trimspace": stdlib.TrimSpaceFunc,
	"split":     stdlib.SplitFunc,
	"join":      stdlib.JoinFunc,
	"replace":   stdlib.ReplaceFunc,
	"substr":    stdlib.SubstrFunc,
	"strlen":    stdlib.StrlenFunc,
	"regex":     stdlib.RegexFunc,
	"contains":  stdlib.ContainsFunc,
	"parseint":  stdlib.ParseIntFunc,
	"tonumber":  stdlib.MakeToFunc(cty.Number),
	"tobool":    stdlib.MakeToFunc(cty.Bool),
	"tostring":  stdlib.MakeToFunc(cty.String),
}

// Expression compiles an HCL expression into an operator. The expression sees
// the raw option value as the string variable "value" and nothing else, for
// example:
//
//	value == "yes"
//	upper(trimspace(value))
//	contains(["dev", "staging", "prod"], value) ? value : null
//
// A null result means the value cannot be coerced and fails the operator.
func Expression(source string) (ValueOperator, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(source), "operator", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid expression: %s", diags.Error())
	}
	return CompileExpression(expr)
}

// CompileExpression builds an operator from an already parsed HCL
// expression, such as an attribute decoded from a definitions file.
func CompileExpression(expr hcl.Expression) (ValueOperator, error) {
	for _, traversal := range expr.Variables() {
		if root := traversal.RootName(); root != ExprValueName {
			return nil, fmt.Errorf("invalid expression: unknown variable %q", root)
		}
	}

	return OperatorFunc(func(raw string) (any, error) {
		ctx := &hcl.EvalContext{
			Variables: map[string]cty.Value{ExprValueName: cty.StringVal(raw)},
			Functions: exprFunctions,
		}
		result, diags := expr.Value(ctx)
		if diags.HasErrors() {
			return nil, errors.New(diags.Error())
		}
		if result.IsNull() {
			return nil, errNullResult
		}
		return ctyToNative(result)
	}), nil
}

// ctyToNative converts an expression result to its natural Go counterpart.
// Whole numbers that fit become int; other numbers become float64.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}
	v, _ = v.Unmark()

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact && int64(int(i)) == i {
				return int(i), nil
			}
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("number out of range: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			out[key.AsString()] = native
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported result type %s", ty.FriendlyName())
	}
}
