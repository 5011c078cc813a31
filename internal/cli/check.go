package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Wybxc/zamuza/internal/compiler"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
}

// CheckResult is the structured payload of a module check.
type CheckResult struct {
	Module string   `json:"module" yaml:"module"`
	Rules  int      `json:"rules" yaml:"rules"`
	Nets   int      `json:"nets" yaml:"nets"`
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <module.cue>",
		Short: "Compile a module and report every error",
		Long: `Load and compile a module without reducing anything. Unlike run, check
does not stop at the first problem: every compile error in the module is
reported.

Example:
  zamuza check examples/qsort.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	return cmd
}

func runCheck(opts *CheckOptions, modulePath string, cmd *cobra.Command) error {
	module, err := LoadModule(modulePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load module", err)
	}

	errs := compiler.CheckModule(*module)
	result := CheckResult{
		Module: modulePath,
		Rules:  len(module.Rules),
		Nets:   len(module.Nets),
	}
	for _, e := range errs {
		result.Errors = append(result.Errors, e.Error())
	}

	out := cmd.OutOrStdout()
	if opts.Format == "text" {
		if len(errs) == 0 {
			fmt.Fprintf(out, "ok: %d rules, %d nets\n", result.Rules, result.Nets)
			return nil
		}
		for _, msg := range result.Errors {
			fmt.Fprintf(out, "error: %s\n", msg)
		}
	} else {
		formatter := &OutputFormatter{Format: opts.Format, Writer: out}
		if err := formatter.Success(result); err != nil {
			return err
		}
	}

	if len(errs) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d compile errors", len(errs)))
	}
	return nil
}
