//nolint:testpackage // using package name 'action' to access unexported fields for testing
package action

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuilderTree(t *testing.T) {
	root := New("tool").Description("test tool")
	root.Option("verbose").Short('v').Switch()
	deploy := root.Action("deploy").Description("deploy services").AcceptArguments()
	deploy.Option("env").Short('e').OneOf("dev", "prod")
	deploy.Action("rollback")
	root.Action("status")

	cfg, err := root.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if cfg.Name() != "tool" || cfg.Description() != "test tool" {
		t.Errorf("Unexpected root %q / %q", cfg.Name(), cfg.Description())
	}
	if cfg.HasParent() || cfg.Parent() != nil {
		t.Error("Root must have no parent")
	}
	if diff := cmp.Diff([]string{"deploy", "status"}, cfg.ChildNames()); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}

	d, ok := cfg.Child("deploy")
	if !ok {
		t.Fatal("Expected deploy child")
	}
	if !d.AcceptsArguments() {
		t.Error("Expected deploy to accept arguments")
	}
	if d.Parent() != cfg || d.Root() != cfg {
		t.Error("Expected deploy parent and root to be the tool")
	}
	if d.ShortOption('e') != d.Option("env") {
		t.Error("Expected -e to alias env")
	}
	if !cfg.Option("verbose").IsSwitch() {
		t.Error("Expected verbose to be a switch")
	}

	rb, _ := d.Child("rollback")
	if diff := cmp.Diff([]string{"tool", "deploy", "rollback"}, rb.Path()); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if rb.AcceptsArguments() {
		t.Error("Arguments must be opt-in")
	}
}

func TestBuilderRedeclare(t *testing.T) {
	root := New("tool")
	root.Action("deploy").AcceptArguments()
	again := root.Action("deploy")
	root.Option("level").Coerce("int")
	root.Option("level").Short('l')

	cfg := root.MustBuild()
	if len(cfg.Children()) != 1 {
		t.Fatalf("Expected a single deploy child, got %d", len(cfg.Children()))
	}
	if again.config != cfg.children["deploy"] {
		t.Error("Redeclaring an action must return the existing child")
	}
	if len(cfg.Options()) != 1 {
		t.Fatalf("Expected one option, got %d", len(cfg.Options()))
	}
	if cfg.Option("level").HasOperator() {
		t.Error("Redeclared option must replace the earlier definition")
	}
}

func TestBuilderErrors(t *testing.T) {
	root := New("tool")
	root.Option("a").Short('x')
	root.Option("b").Short('x')
	root.Option("c").Coerce("no-such-operator")
	root.Option("d").Expr("upper(")

	_, err := root.Build()
	if err == nil {
		t.Fatal("Expected declaration errors")
	}
	msg := err.Error()
	for _, want := range []string{"already used by option \"a\"", "unknown operator \"no-such-operator\"", "option \"d\""} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected %q in %q", want, msg)
		}
	}

	if _, err := New("").Build(); err == nil {
		t.Error("Expected error for empty command name")
	}
}

func TestBuilderFrozen(t *testing.T) {
	root := New("tool")
	root.MustBuild()

	defer func() {
		if recover() == nil {
			t.Error("Expected panic when declaring after Build")
		}
	}()
	root.Action("late")
}

func TestBuilderCustomOperators(t *testing.T) {
	ops := NewOperators()
	if err := ops.Register("csv-upper", func(raw string) (any, error) {
		return strings.ToUpper(raw), nil
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := ops.Register("csv-upper", identity); !errors.Is(err, ErrOperatorExists) {
		t.Errorf("Expected ErrOperatorExists, got %v", err)
	}

	root := New("tool").WithOperators(ops)
	root.Option("name").Coerce("csv-upper")
	cfg := root.MustBuild()

	cc, err := Resolve(cfg, ParsedInput{Options: []RawOption{{Name: "name", Value: "abc"}}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := cc.MustString("name", ""); got != "ABC" {
		t.Errorf("Expected ABC, got %q", got)
	}

	if _, ok := DefaultOperators.Lookup("csv-upper"); ok {
		t.Error("Custom registry must not leak into DefaultOperators")
	}
}
