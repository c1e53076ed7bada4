// Package cobrabridge lets a cobra command tree drive action resolution:
// the cobra tree is mirrored as an *action.Config, cobra does the
// tokenizing, and handlers run through an action.Dispatcher.
package cobrabridge

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dzonerzy/go-action/action"
)

// Mirror declares cmd and its visible subcommands on an action builder.
// Flag types pick the option operator; bool flags become switches.
func Mirror(cmd *cobra.Command) *action.Builder {
	b := action.New(cmd.Name())
	declare(b, cmd)
	return b
}

// Convert mirrors cmd and builds the tree
func Convert(cmd *cobra.Command) (*action.Config, error) {
	return Mirror(cmd).Build()
}

func declare(b *action.Builder, cmd *cobra.Command) {
	b.Description(cmd.Short).Arguments(acceptsArguments(cmd))

	declareFlags(b, cmd.LocalFlags())
	declareFlags(b, cmd.InheritedFlags())

	for _, sub := range cmd.Commands() {
		if sub.Hidden {
			continue
		}
		declare(b.Action(sub.Name()), sub)
	}
}

func declareFlags(b *action.Builder, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		ob := b.Option(f.Name).Description(f.Usage)
		if f.Shorthand != "" {
			ob.Short([]rune(f.Shorthand)[0])
		}
		if f.Value.Type() == "bool" {
			ob.Switch()
			return
		}
		if op := operatorFor(f.Value.Type()); op != nil {
			ob.Operator(op)
		}
	})
}

// operatorFor maps a pflag value type to a built-in operator
func operatorFor(flagType string) action.ValueOperator {
	name := ""
	switch flagType {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64", "count":
		name = "int"
	case "float32", "float64":
		name = "float"
	case "duration":
		name = "duration"
	case "stringSlice", "stringArray":
		name = "string-slice"
	case "intSlice", "int32Slice", "int64Slice":
		name = "int-slice"
	default:
		return nil
	}
	op, _ := action.Named(name)
	return op
}

// acceptsArguments probes cmd.Args with one to three arguments. Without a
// validator cobra accepts arguments only on leaf commands.
func acceptsArguments(cmd *cobra.Command) bool {
	if cmd.Args == nil {
		return !cmd.HasSubCommands()
	}
	probe := []string{"a", "b", "c"}
	for n := 1; n <= len(probe); n++ {
		if cmd.Args(cmd, probe[:n]) == nil {
			return true
		}
	}
	return false
}

// Input converts a running cobra invocation into ParsedInput. Only flags set
// on the command line are reported.
func Input(cmd *cobra.Command, args []string) action.ParsedInput {
	var in action.ParsedInput

	path := strings.Fields(cmd.CommandPath())
	if len(path) > 1 {
		in.ActionPath = path[1:]
	}

	cmd.Flags().Visit(func(f *pflag.Flag) {
		in.Options = append(in.Options, action.RawOption{Name: f.Name, Value: flagValue(f)})
	})
	in.Arguments = append(in.Arguments, args...)
	return in
}

func flagValue(f *pflag.Flag) string {
	if sv, ok := f.Value.(pflag.SliceValue); ok {
		return strings.Join(sv.GetSlice(), ",")
	}
	return f.Value.String()
}

// RunE adapts a dispatcher to cobra's RunE
func RunE(d *action.Dispatcher) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return d.Dispatch(ctx, Input(cmd, args))
	}
}

// Attach sets RunE on cmd and every subcommand that has no Run or RunE
func Attach(cmd *cobra.Command, d *action.Dispatcher) {
	if cmd.Run == nil && cmd.RunE == nil {
		cmd.RunE = RunE(d)
	}
	for _, sub := range cmd.Commands() {
		Attach(sub, d)
	}
}
