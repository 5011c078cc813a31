package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Wybxc/zamuza/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Journal string
	Run     string
}

// TraceFiring is one journal row in trace output.
type TraceFiring struct {
	Seq         int64  `json:"seq" yaml:"seq"`
	Rule        string `json:"rule" yaml:"rule"`
	LeftSymbol  string `json:"left_symbol" yaml:"left_symbol"`
	RightSymbol string `json:"right_symbol" yaml:"right_symbol"`
	LeftNode    string `json:"left_node" yaml:"left_node"`
	RightNode   string `json:"right_node" yaml:"right_node"`
	Allocated   int    `json:"allocated" yaml:"allocated"`
	Enqueued    int    `json:"enqueued" yaml:"enqueued"`
}

// TraceResult is the structured payload of a trace query.
type TraceResult struct {
	RunToken string        `json:"run_token,omitempty" yaml:"run_token,omitempty"`
	Firings  []TraceFiring `json:"firings,omitempty" yaml:"firings,omitempty"`
	Runs     []TraceRun    `json:"runs,omitempty" yaml:"runs,omitempty"`
}

// TraceRun summarizes one recorded run.
type TraceRun struct {
	Token   string `json:"token" yaml:"token"`
	Firings int    `json:"firings" yaml:"firings"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect a recorded reduction journal",
		Long: `Read back a journal written by run --journal. Without --run, lists the
recorded runs; with --run (or --run latest), lists that run's firings in
reduction order.

Example:
  zamuza trace --journal ./runs.db
  zamuza trace --journal ./runs.db --run latest`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (required)")
	cmd.Flags().StringVar(&opts.Run, "run", "", "run token to list firings for (\"latest\" for the newest run)")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	if _, err := os.Stat(opts.Journal); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("journal not found: %s", opts.Journal), err)
	}

	st, err := store.Open(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	formatter := &OutputFormatter{Format: opts.Format, Writer: out}

	if opts.Run == "" {
		runs, err := st.Runs(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		result := TraceResult{}
		for _, r := range runs {
			result.Runs = append(result.Runs, TraceRun{Token: r.Token, Firings: r.Firings})
		}
		if opts.Format == "text" {
			if len(runs) == 0 {
				fmt.Fprintln(out, "no recorded runs")
				return nil
			}
			for _, r := range runs {
				fmt.Fprintf(out, "%s  %d firings\n", r.Token, r.Firings)
			}
			return nil
		}
		return formatter.Success(result)
	}

	token := opts.Run
	if token == "latest" {
		token, err = st.LatestRun(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to resolve latest run", err)
		}
		if token == "" {
			return NewExitError(ExitCommandError, "journal has no recorded runs")
		}
	}

	firings, err := st.ReadFirings(ctx, token)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read firings", err)
	}
	if len(firings) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no firings recorded for run %s", token))
	}

	result := TraceResult{RunToken: token}
	for _, f := range firings {
		result.Firings = append(result.Firings, TraceFiring{
			Seq:         f.Seq,
			Rule:        f.Rule,
			LeftSymbol:  f.LeftSymbol,
			RightSymbol: f.RightSymbol,
			LeftNode:    f.LeftNode,
			RightNode:   f.RightNode,
			Allocated:   f.Allocated,
			Enqueued:    f.Enqueued,
		})
	}

	if opts.Format == "text" {
		fmt.Fprintf(out, "run %s: %d firings\n", token, len(firings))
		for _, f := range result.Firings {
			fmt.Fprintf(out, "%6d  %s >< %s  (%s, %s)  +%d nodes  +%d pairs\n",
				f.Seq, f.LeftSymbol, f.RightSymbol, f.LeftNode, f.RightNode, f.Allocated, f.Enqueued)
		}
		return nil
	}
	return formatter.Success(result)
}
