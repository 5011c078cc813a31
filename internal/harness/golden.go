package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceText renders a scenario result as the canonical golden-file text:
// a header naming the scenario and run token, one line per firing in
// reduction order, and the interface values at normal form.
func TraceText(scenarioName string, result *Result) []byte {
	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario %s\n", scenarioName)
	fmt.Fprintf(&buf, "run %s\n", result.RunToken)
	for _, ev := range result.Trace {
		fmt.Fprintf(&buf, "%4d  %s >< %s  +%d nodes  +%d pairs\n",
			ev.Seq, ev.Left, ev.Right, ev.Allocated, ev.Enqueued)
	}
	if len(result.Interface) > 0 {
		fmt.Fprintf(&buf, "interface:\n")
		for _, v := range result.Interface {
			fmt.Fprintf(&buf, "%s\n", v)
		}
	}
	return []byte(buf.String())
}

// RunWithGolden executes a scenario and compares its trace against the
// golden file testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an already-obtained result's trace against the
// golden file for the given scenario name.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, TraceText(scenarioName, result))
}
