package benchmark

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/urfave/cli/v2"

	"github.com/dzonerzy/go-action/action"
	"github.com/dzonerzy/go-action/argv"
	"github.com/dzonerzy/go-action/middleware"
)

// Category: resolution. All three routers dispatch "run" with an int and a
// bool option so the numbers stay comparable.

func buildRunTree() *action.Config {
	return action.New("bench").
		Action("run").
		Option("port").Coerce("int").Back().
		Switch("verbose").Back().
		Handler(func(context.Context, *action.CommandContext) error { return nil }).
		Root().
		MustBuild()
}

func buildDeepTree() *action.Config {
	b := action.New("bench")
	b.Switch("global")
	b.Action("db").Action("migrate").Action("up").
		AcceptArguments().
		Option("steps").Coerce("int").Back().
		Option("timeout").Coerce("duration").Back().
		Option("env").OneOf("dev", "staging", "prod")
	b.Action("db").Action("seed")
	b.Action("serve").Option("port").Coerce("int")
	return b.MustBuild()
}

func BenchmarkResolve_Simple(b *testing.B) {
	root := buildRunTree()
	in := action.ParsedInput{
		ActionPath: []string{"run"},
		Options:    []action.RawOption{{Name: "port", Value: "9000"}, {Name: "verbose", Value: "true"}},
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = action.Resolve(root, in)
	}
}

func BenchmarkResolve_Deep(b *testing.B) {
	root := buildDeepTree()
	in := action.ParsedInput{
		ActionPath: []string{"db", "migrate", "up", "0003"},
		Options: []action.RawOption{
			{Name: "steps", Value: "2"},
			{Name: "timeout", Value: "1m30s"},
			{Name: "env", Value: "prod"},
		},
		Arguments: []string{"--dry"},
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = action.Resolve(root, in)
	}
}

func BenchmarkResolve_IllegalArgument(b *testing.B) {
	root := buildDeepTree()
	in := action.ParsedInput{ActionPath: []string{"db", "migrat"}}

	b.Run("NoSuggestions", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = action.Resolve(root, in)
		}
	})
	b.Run("Suggestions", func(b *testing.B) {
		r := action.NewResolver(action.WithSuggestions(true, 2))
		for i := 0; i < b.N; i++ {
			_, _ = r.Resolve(root, in)
		}
	})
}

func BenchmarkArgvParse(b *testing.B) {
	root := buildDeepTree()
	args := []string{"--global", "db", "migrate", "up", "--steps", "2", "--timeout=90s", "-", "0003", "--", "--dry"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = argv.Parse(root, args)
	}
}

func BenchmarkExpressionOperator(b *testing.B) {
	op, err := action.Expression(`upper(trimspace(value))`)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = op.Operate("  eu-west ")
	}
}

func BenchmarkDispatch_Middleware(b *testing.B) {
	logger := log.New(io.Discard)
	d := action.NewDispatcher(buildRunTree(), action.WithMiddleware(
		middleware.Logger(middleware.WithLogger(logger)),
		middleware.RecoveryToError(),
		middleware.Validate(middleware.Required("port")),
	))
	args := []string{"run", "--port", "9000", "--verbose"}
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		in, _ := argv.Parse(d.Root(), args)
		_ = d.Dispatch(ctx, in)
	}
}

func BenchmarkSimpleCLI_Action(b *testing.B) {
	d := action.NewDispatcher(buildRunTree())
	args := []string{"run", "--port", "9000", "--verbose"}
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		in, _ := argv.Parse(d.Root(), args)
		_ = d.Dispatch(ctx, in)
	}
}

func BenchmarkSimpleCLI_Cobra(b *testing.B) {
	args := []string{"run", "--port", "9000", "--verbose"}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		rootCmd := &cobra.Command{Use: "bench"}
		runCmd := &cobra.Command{
			Use: "run",
			Run: func(_ *cobra.Command, _ []string) {},
		}
		runCmd.Flags().IntP("port", "p", 8080, "Server port")
		runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
		rootCmd.AddCommand(runCmd)
		rootCmd.SetArgs(args)
		_ = rootCmd.Execute()
	}
}

func BenchmarkSimpleCLI_Urfave(b *testing.B) {
	args := []string{"bench", "run", "--port", "9000", "--verbose"}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		app := &cli.App{
			Name: "bench",
			Commands: []*cli.Command{
				{
					Name: "run",
					Flags: []cli.Flag{
						&cli.IntFlag{Name: "port", Value: 8080, Usage: "Server port"},
						&cli.BoolFlag{Name: "verbose", Usage: "Verbose output"},
					},
					Action: func(_ *cli.Context) error { return nil },
				},
			},
		}
		_ = app.Run(args)
	}
}
