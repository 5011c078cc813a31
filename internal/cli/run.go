package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Wybxc/zamuza/internal/ast"
	"github.com/Wybxc/zamuza/internal/compiler"
	"github.com/Wybxc/zamuza/internal/engine"
	"github.com/Wybxc/zamuza/internal/extract"
	"github.com/Wybxc/zamuza/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Net         string
	Budget      int
	Journal     string
	OptionsFile string
	Timing      bool

	// TokenGenerator allows overriding the run token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	TokenGenerator engine.RunTokenGenerator
}

// RunConfig is the YAML shape of the optional run-options file. Flags set
// explicitly on the command line take precedence over file values.
type RunConfig struct {
	Net     string `yaml:"net"`
	Budget  int    `yaml:"budget"`
	Journal string `yaml:"journal"`
	Timing  bool   `yaml:"timing"`
}

// RunResult is the structured payload of a completed reduction.
type RunResult struct {
	Net        string   `json:"net" yaml:"net"`
	RunToken   string   `json:"run_token" yaml:"run_token"`
	Reductions int      `json:"reductions" yaml:"reductions"`
	Interface  []string `json:"interface" yaml:"interface"`
	ElapsedMS  float64  `json:"elapsed_ms,omitempty" yaml:"elapsed_ms,omitempty"`
	PerSecond  float64  `json:"reductions_per_second,omitempty" yaml:"reductions_per_second,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <module.cue>",
		Short: "Reduce a module's net to normal form",
		Long: `Load a module document, compile its rules, build the requested net
(Main by default), and reduce it to normal form. The interface values of the
reduced net are printed in declaration order.

Example:
  zamuza run examples/qsort.cue
  zamuza run prog.cue --net Square --budget 100000 --journal ./runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReduce(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Net, "net", ast.RootNetName, "net to reduce")
	cmd.Flags().IntVar(&opts.Budget, "budget", 0, "maximum firings before aborting (0 = unbounded)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal recording every firing")
	cmd.Flags().StringVar(&opts.OptionsFile, "options", "", "path to YAML run-options file")
	cmd.Flags().BoolVar(&opts.Timing, "timing", false, "report elapsed time and reductions per second")

	return cmd
}

func runReduce(opts *RunOptions, modulePath string, cmd *cobra.Command) error {
	if opts.OptionsFile != "" {
		if err := applyRunConfig(opts, cmd); err != nil {
			return WrapExitError(ExitCommandError, "failed to load options file", err)
		}
	}

	slog.Info("loading module", "path", modulePath)
	module, err := LoadModule(modulePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load module", err)
	}

	prog, err := compiler.Compile(*module)
	if err != nil {
		return WrapExitError(ExitFailure, "module does not compile", err)
	}
	slog.Info("module compiled", "rules", prog.Rules.Len(), "symbols", prog.Symbols.Len())

	g, err := prog.BuildNet(opts.Net)
	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("failed to build net %s", opts.Net), err)
	}

	engOpts := []engine.Option{}
	if opts.Budget > 0 {
		engOpts = append(engOpts, engine.WithBudget(opts.Budget))
	}
	if opts.TokenGenerator != nil {
		engOpts = append(engOpts, engine.WithTokenGenerator(opts.TokenGenerator))
	}
	if opts.Journal != "" {
		slog.Info("opening journal", "path", opts.Journal)
		st, err := store.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()
		engOpts = append(engOpts, engine.WithJournal(st))
	}

	eng := engine.New(prog.Rules, engOpts...)

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, stopping reduction", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	start := time.Now()
	stats, err := eng.Reduce(ctx, g)
	elapsed := time.Since(start)
	if err != nil {
		switch {
		case engine.IsStuckError(err):
			return WrapExitError(ExitFailure, "net is stuck", err)
		case engine.IsBudgetError(err):
			return WrapExitError(ExitFailure, "budget exceeded", err)
		default:
			return WrapExitError(ExitFailure, "reduction aborted", err)
		}
	}

	values := extract.Interfaces(g)
	result := RunResult{
		Net:        opts.Net,
		RunToken:   stats.RunToken,
		Reductions: stats.Reductions,
		Interface:  make([]string, len(values)),
	}
	for i, v := range values {
		result.Interface[i] = v.String()
	}
	if opts.Timing {
		result.ElapsedMS = float64(elapsed.Microseconds()) / 1000
		if secs := elapsed.Seconds(); secs > 0 {
			result.PerSecond = float64(stats.Reductions) / secs
		}
	}

	out := cmd.OutOrStdout()
	if opts.Format == "text" {
		for _, v := range result.Interface {
			fmt.Fprintln(out, v)
		}
		if opts.Timing {
			fmt.Fprintf(out, "%d reductions in %s (%.0f/s)\n", result.Reductions, elapsed, result.PerSecond)
		}
		return nil
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: out}
	return formatter.Success(result)
}

// applyRunConfig merges the YAML options file into opts. A flag the user set
// explicitly wins over the file value.
func applyRunConfig(opts *RunOptions, cmd *cobra.Command) error {
	data, err := os.ReadFile(opts.OptionsFile)
	if err != nil {
		return err
	}
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", opts.OptionsFile, err)
	}

	flags := cmd.Flags()
	if cfg.Net != "" && !flags.Changed("net") {
		opts.Net = cfg.Net
	}
	if cfg.Budget > 0 && !flags.Changed("budget") {
		opts.Budget = cfg.Budget
	}
	if cfg.Journal != "" && !flags.Changed("journal") {
		opts.Journal = cfg.Journal
	}
	if cfg.Timing && !flags.Changed("timing") {
		opts.Timing = true
	}
	return nil
}
