// Package urfavebridge lets a urfave/cli application drive action
// resolution. The app's command tree is mirrored as an *action.Config and
// every command action is routed through an action.Dispatcher.
package urfavebridge

import (
	"context"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dzonerzy/go-action/action"
)

// Mirror declares app and its visible commands on an action builder
func Mirror(app *cli.App) *action.Builder {
	b := action.New(app.Name)
	b.Description(app.Usage).Arguments(app.ArgsUsage != "" || len(app.Commands) == 0)
	declareFlags(b, app.Flags)
	for _, cmd := range app.Commands {
		if cmd.Hidden {
			continue
		}
		declare(b.Action(cmd.Name), cmd)
	}
	return b
}

// Convert mirrors app and builds the tree
func Convert(app *cli.App) (*action.Config, error) {
	return Mirror(app).Build()
}

// declare mirrors one command. A command takes arguments when it documents
// them (ArgsUsage) or has no subcommands.
func declare(b *action.Builder, cmd *cli.Command) {
	b.Description(cmd.Usage).Arguments(cmd.ArgsUsage != "" || len(cmd.Subcommands) == 0)
	declareFlags(b, cmd.Flags)
	for _, sub := range cmd.Subcommands {
		if sub.Hidden {
			continue
		}
		declare(b.Action(sub.Name), sub)
	}
}

func declareFlags(b *action.Builder, flags []cli.Flag) {
	for _, f := range flags {
		names := f.Names()
		if len(names) == 0 {
			continue
		}
		ob := b.Option(names[0])
		if doc, ok := f.(cli.DocGenerationFlag); ok {
			ob.Description(doc.GetUsage())
		}
		for _, alias := range names[1:] {
			if r := []rune(alias); len(r) == 1 {
				ob.Short(r[0])
				break
			}
		}

		switch f.(type) {
		case *cli.BoolFlag:
			ob.Switch()
		case *cli.IntFlag, *cli.Int64Flag, *cli.UintFlag, *cli.Uint64Flag:
			ob.Operator(action.Int)
		case *cli.Float64Flag:
			ob.Operator(action.Float)
		case *cli.DurationFlag:
			ob.Operator(action.Duration)
		case *cli.StringSliceFlag:
			ob.Coerce("string-slice")
		case *cli.IntSliceFlag, *cli.Int64SliceFlag:
			ob.Coerce("int-slice")
		}
	}
}

// Input converts a running urfave/cli invocation into ParsedInput. Only
// flags of the running command that were set are reported.
func Input(c *cli.Context) action.ParsedInput {
	var in action.ParsedInput

	// Lineage runs leaf to root; the topmost named command is the app itself.
	lineage := c.Lineage()
	seenRoot := false
	for i := len(lineage) - 1; i >= 0; i-- {
		cmd := lineage[i].Command
		if cmd == nil || cmd.Name == "" {
			continue
		}
		if !seenRoot {
			seenRoot = true
			if c.App != nil && cmd.Name == c.App.Name {
				continue
			}
		}
		in.ActionPath = append(in.ActionPath, cmd.Name)
	}

	var flags []cli.Flag
	if c.Command != nil {
		flags = c.Command.Flags
	} else if c.App != nil {
		flags = c.App.Flags
	}
	for _, f := range flags {
		names := f.Names()
		if len(names) == 0 {
			continue
		}
		name := names[0]
		if !c.IsSet(name) {
			continue
		}
		in.Options = append(in.Options, action.RawOption{Name: name, Value: flagValue(c, f, name)})
	}

	in.Arguments = append(in.Arguments, c.Args().Slice()...)
	return in
}

func flagValue(c *cli.Context, f cli.Flag, name string) string {
	switch f.(type) {
	case *cli.StringSliceFlag:
		return strings.Join(c.StringSlice(name), ",")
	case *cli.IntSliceFlag:
		ints := c.IntSlice(name)
		parts := make([]string, len(ints))
		for i, v := range ints {
			parts[i] = strconv.Itoa(v)
		}
		return strings.Join(parts, ",")
	case *cli.Int64SliceFlag:
		ints := c.Int64Slice(name)
		parts := make([]string, len(ints))
		for i, v := range ints {
			parts[i] = strconv.FormatInt(v, 10)
		}
		return strings.Join(parts, ",")
	case *cli.BoolFlag:
		return strconv.FormatBool(c.Bool(name))
	default:
		return c.String(name)
	}
}

// ActionFunc adapts a dispatcher to a cli.ActionFunc
func ActionFunc(d *action.Dispatcher) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx := c.Context
		if ctx == nil {
			ctx = context.Background()
		}
		return d.Dispatch(ctx, Input(c))
	}
}

// Attach routes the app and every command without an Action through d
func Attach(app *cli.App, d *action.Dispatcher) {
	if app.Action == nil {
		app.Action = ActionFunc(d)
	}
	for _, cmd := range app.Commands {
		attachCommand(cmd, d)
	}
}

func attachCommand(cmd *cli.Command, d *action.Dispatcher) {
	if cmd.Action == nil {
		cmd.Action = ActionFunc(d)
	}
	for _, sub := range cmd.Subcommands {
		attachCommand(sub, d)
	}
}
