package harness

import (
	"context"
	"fmt"

	"github.com/Wybxc/zamuza/internal/ast"
	"github.com/Wybxc/zamuza/internal/cli"
	"github.com/Wybxc/zamuza/internal/compiler"
	"github.com/Wybxc/zamuza/internal/engine"
	"github.com/Wybxc/zamuza/internal/extract"
	"github.com/Wybxc/zamuza/internal/store"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory journal, with a fixed run
// token, so traces are isolated and reproducible. Infrastructure failures
// (unreadable module, compile error, broken journal) return an error;
// outcome mismatches are recorded on the result.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer st.Close()

	module, err := cli.LoadModule(scenario.Module)
	if err != nil {
		return nil, fmt.Errorf("failed to load module: %w", err)
	}
	prog, err := compiler.Compile(*module)
	if err != nil {
		return nil, fmt.Errorf("module does not compile: %w", err)
	}

	netName := scenario.Net
	if netName == "" {
		netName = ast.RootNetName
	}
	g, err := prog.BuildNet(netName)
	if err != nil {
		return nil, fmt.Errorf("failed to build net %s: %w", netName, err)
	}

	token := scenario.RunToken
	if token == "" {
		token = "harness-" + scenario.Name
	}

	engOpts := []engine.Option{
		engine.WithTokenGenerator(engine.NewFixedGenerator(token)),
		engine.WithJournal(st),
	}
	if scenario.Budget > 0 {
		engOpts = append(engOpts, engine.WithBudget(scenario.Budget))
	}
	eng := engine.New(prog.Rules, engOpts...)

	ctx := context.Background()
	result := NewResult()
	result.RunToken = token

	stats, reduceErr := eng.Reduce(ctx, g)
	result.Reductions = stats.Reductions

	checkOutcome(result, scenario.Expect, reduceErr)
	if reduceErr == nil {
		values := extract.Interfaces(g)
		result.Interface = make([]string, len(values))
		for i, v := range values {
			result.Interface[i] = v.String()
		}
		checkInterface(result, scenario.Expect)
	}

	firings, err := st.ReadFirings(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	for _, f := range firings {
		result.Trace = append(result.Trace, TraceEvent{
			Seq:       f.Seq,
			Left:      f.LeftSymbol,
			Right:     f.RightSymbol,
			Rule:      f.Rule,
			Allocated: f.Allocated,
			Enqueued:  f.Enqueued,
		})
	}

	for _, errMsg := range EvaluateAssertions(result.Trace, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

// checkOutcome validates the success/failure mode of the reduction against
// the expect clause.
func checkOutcome(result *Result, expect *ExpectClause, reduceErr error) {
	expectedError := ""
	if expect != nil {
		expectedError = expect.Error
	}

	switch {
	case reduceErr == nil:
		if expectedError != "" {
			result.AddError(fmt.Sprintf("expected %s failure, reduction succeeded", expectedError))
		}
	case engine.IsStuckError(reduceErr):
		if expectedError != ExpectErrorStuck {
			result.AddError(fmt.Sprintf("net is stuck: %v", reduceErr))
		}
	case engine.IsBudgetError(reduceErr):
		if expectedError != ExpectErrorBudget {
			result.AddError(fmt.Sprintf("budget exceeded: %v", reduceErr))
		}
	default:
		result.AddError(fmt.Sprintf("reduction aborted: %v", reduceErr))
	}

	if expect != nil && expect.Reductions != nil && result.Reductions != *expect.Reductions {
		result.AddError(fmt.Sprintf("expected %d reductions, got %d", *expect.Reductions, result.Reductions))
	}
}

// checkInterface validates the normal-form interface values against the
// expect clause. Only called after a successful reduction.
func checkInterface(result *Result, expect *ExpectClause) {
	if expect == nil || expect.Interface == nil {
		return
	}
	if len(result.Interface) != len(expect.Interface) {
		result.AddError(fmt.Sprintf("expected %d interface values, got %d: %v",
			len(expect.Interface), len(result.Interface), result.Interface))
		return
	}
	for i, want := range expect.Interface {
		if result.Interface[i] != want {
			result.AddError(fmt.Sprintf("interface[%d]: expected %s, got %s", i, want, result.Interface[i]))
		}
	}
}
