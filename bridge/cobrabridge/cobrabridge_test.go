package cobrabridge

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/dzonerzy/go-action/action"
)

func newCobraTree() *cobra.Command {
	root := &cobra.Command{Use: "tool", Short: "test tool"}
	root.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	deploy := &cobra.Command{
		Use:   "deploy [service...]",
		Short: "deploy services",
		Args:  cobra.ArbitraryArgs,
	}
	deploy.Flags().StringP("env", "e", "dev", "target environment")
	deploy.Flags().Int("replicas", 1, "replica count")
	deploy.Flags().Duration("timeout", time.Minute, "deploy timeout")
	deploy.Flags().StringSlice("tags", nil, "tags")

	status := &cobra.Command{Use: "status", Args: cobra.NoArgs}
	secret := &cobra.Command{Use: "secret", Hidden: true}

	root.AddCommand(deploy, status, secret)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root
}

func TestConvert(t *testing.T) {
	cfg, err := Convert(newCobraTree())
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if cfg.Name() != "tool" || cfg.Description() != "test tool" {
		t.Errorf("Unexpected root %q / %q", cfg.Name(), cfg.Description())
	}
	if diff := cmp.Diff([]string{"deploy", "status"}, cfg.ChildNames()); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}

	deploy, _ := cfg.Child("deploy")
	if !deploy.AcceptsArguments() {
		t.Error("ArbitraryArgs must accept arguments")
	}
	if deploy.ShortOption('e') == nil || deploy.Option("replicas") == nil {
		t.Error("Expected local flags mirrored as options")
	}
	if deploy.Option("verbose") == nil || !deploy.Option("verbose").IsSwitch() {
		t.Error("Expected inherited persistent bool flag as a switch")
	}

	status, _ := cfg.Child("status")
	if status.AcceptsArguments() {
		t.Error("NoArgs must not accept arguments")
	}
}

func TestExecuteThroughDispatcher(t *testing.T) {
	root := newCobraTree()

	b := Mirror(root)
	var got *action.CommandContext
	b.Action("deploy").Handler(func(_ context.Context, cc *action.CommandContext) error {
		got = cc
		return nil
	})
	cfg, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	Attach(root, action.NewDispatcher(cfg))

	root.SetArgs([]string{"deploy", "-e", "prod", "--replicas", "3", "--timeout", "90s", "--tags", "a,b", "-v", "svc-a", "svc-b"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
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
	if !got.MustBool("verbose", false) {
		t.Error("Expected verbose switch")
	}
	if diff := cmp.Diff([]string{"svc-a", "svc-b"}, got.Arguments()); diff != "" {
		t.Errorf("arguments mismatch (-want +got):\n%s", diff)
	}
}

func TestInputOnlyChangedFlags(t *testing.T) {
	root := newCobraTree()
	deploy, _, err := root.Find([]string{"deploy"})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if err := deploy.ParseFlags([]string{"--replicas", "2"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	in := Input(deploy, []string{"x"})
	want := action.ParsedInput{
		ActionPath: []string{"deploy"},
		Options:    []action.RawOption{{Name: "replicas", Value: "2"}},
		Arguments:  []string{"x"},
	}
	if diff := cmp.Diff(want, in); diff != "" {
		t.Errorf("input mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatchErrorsSurface(t *testing.T) {
	root := newCobraTree()
	cfg := Mirror(root).MustBuild() // no handlers registered
	Attach(root, action.NewDispatcher(cfg))

	root.SetArgs([]string{"status"})
	err := root.Execute()
	if !errors.Is(err, action.ErrNoHandler) {
		t.Errorf("Expected ErrNoHandler, got %v", err)
	}
}
