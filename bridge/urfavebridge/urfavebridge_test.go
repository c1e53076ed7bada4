package urfavebridge

import (
	"context"
	"errors"
	"flag"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli/v2"

	"github.com/dzonerzy/go-action/action"
)

func newApp() *cli.App {
	return &cli.App{
		Name:   "tool",
		Usage:  "test tool",
		Writer: io.Discard,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
		},
		Commands: []*cli.Command{
			{
				Name:      "deploy",
				Usage:     "deploy services",
				ArgsUsage: "[service...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "env", Aliases: []string{"e"}, Usage: "target environment"},
					&cli.IntFlag{Name: "replicas"},
					&cli.DurationFlag{Name: "timeout"},
					&cli.StringSliceFlag{Name: "tags"},
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}},
				},
				Subcommands: []*cli.Command{
					{Name: "rollback"},
				},
			},
			{Name: "internal", Hidden: true},
		},
	}
}

func TestConvert(t *testing.T) {
	cfg, err := Convert(newApp())
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if cfg.Name() != "tool" || cfg.Description() != "test tool" {
		t.Errorf("Unexpected root %q / %q", cfg.Name(), cfg.Description())
	}
	if diff := cmp.Diff([]string{"deploy"}, cfg.ChildNames()); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	if cfg.AcceptsArguments() {
		t.Error("Root with commands and no ArgsUsage must not accept arguments")
	}
	if !cfg.Option("verbose").IsSwitch() || cfg.ShortOption('v') == nil {
		t.Error("Expected verbose switch with -v")
	}

	deploy, _ := cfg.Child("deploy")
	if !deploy.AcceptsArguments() {
		t.Error("ArgsUsage must enable arguments")
	}
	if deploy.Option("env").Description() != "target environment" {
		t.Errorf("Expected usage as description, got %q", deploy.Option("env").Description())
	}
	rollback, ok := deploy.Child("rollback")
	if !ok || !rollback.AcceptsArguments() {
		t.Error("Expected leaf rollback accepting arguments")
	}
}

func TestRunThroughDispatcher(t *testing.T) {
	app := newApp()

	b := Mirror(app)
	var got *action.CommandContext
	b.Action("deploy").Handler(func(_ context.Context, cc *action.CommandContext) error {
		got = cc
		return nil
	})
	cfg, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	Attach(app, action.NewDispatcher(cfg))

	args := []string{"tool", "deploy", "--env", "prod", "--replicas", "3", "--timeout", "90s", "--tags", "a", "--tags", "b", "-f", "svc-a", "svc-b"}
	if err := app.RunContext(context.Background(), args); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got == nil {
		t.Fatal("Handler did not run")
	}

	if got.CommandPath() != "tool deploy" {
		t.Errorf("Expected tool deploy, got %q", got.CommandPath())
	}
	if got.MustString("env", "") != "prod" {
		t.Errorf("Expected env prod, got %v", got.OptionValue("env"))
	}
	if got.MustInt("replicas", 0) != 3 {
		t.Errorf("Expected replicas 3, got %v", got.OptionValue("replicas"))
	}
	if got.MustDuration("timeout", 0) != 90*time.Second {
		t.Errorf("Expected 90s, got %v", got.OptionValue("timeout"))
	}
	if tags, _ := got.StringSlice("tags"); !cmp.Equal(tags, []string{"a", "b"}) {
		t.Errorf("Expected tags [a b], got %v", tags)
	}
	if !got.MustBool("force", false) {
		t.Error("Expected force switch")
	}
	if got.HasOption("verbose") {
		t.Error("Root flags are not reported for a subcommand")
	}
	if diff := cmp.Diff([]string{"svc-a", "svc-b"}, got.Arguments()); diff != "" {
		t.Errorf("arguments mismatch (-want +got):\n%s", diff)
	}
}

func TestNestedCommandPath(t *testing.T) {
	app := newApp()

	var path string
	b := Mirror(app)
	b.Action("deploy").Action("rollback").Handler(func(_ context.Context, cc *action.CommandContext) error {
		path = cc.CommandPath()
		return nil
	})
	Attach(app, action.NewDispatcher(b.MustBuild()))

	if err := app.Run([]string{"tool", "deploy", "rollback"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if path != "tool deploy rollback" {
		t.Errorf("Expected tool deploy rollback, got %q", path)
	}
}

func TestRunSurfacesOperatorErrors(t *testing.T) {
	app := newApp()

	b := Mirror(app)
	b.Action("deploy").
		Option("env").OneOf("dev", "prod").Back().
		Handler(func(context.Context, *action.CommandContext) error { return nil })
	Attach(app, action.NewDispatcher(b.MustBuild()))

	err := app.Run([]string{"tool", "deploy", "--env", "qa"})
	if !errors.Is(err, action.ErrOperatorFailure) {
		t.Errorf("Expected operator failure, got %v", err)
	}
}

// namelessFlag is a flag implementation that reports no names
type namelessFlag struct{}

func (namelessFlag) String() string            { return "" }
func (namelessFlag) Apply(*flag.FlagSet) error { return nil }
func (namelessFlag) Names() []string           { return nil }
func (namelessFlag) IsSet() bool               { return false }

func TestInputSkipsNamelessFlags(t *testing.T) {
	set := flag.NewFlagSet("deploy", flag.ContinueOnError)
	set.String("env", "", "")
	if err := set.Parse([]string{"--env", "prod", "svc"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	app := &cli.App{Name: "tool", Writer: io.Discard}
	c := cli.NewContext(app, set, nil)
	c.Command = &cli.Command{
		Name:  "deploy",
		Flags: []cli.Flag{namelessFlag{}, &cli.StringFlag{Name: "env"}},
	}

	want := action.ParsedInput{
		ActionPath: []string{"deploy"},
		Options:    []action.RawOption{{Name: "env", Value: "prod"}},
		Arguments:  []string{"svc"},
	}
	if diff := cmp.Diff(want, Input(c)); diff != "" {
		t.Errorf("input mismatch (-want +got):\n%s", diff)
	}
}
