package harness

import (
	"fmt"
	"path/filepath"
	"sort"
)

// SuiteResult aggregates the outcome of running a directory of scenarios.
type SuiteResult struct {
	Scenarios int               `json:"scenarios"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Failures  []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioFailure describes one failed scenario.
type ScenarioFailure struct {
	Path  string `json:"path"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error"`
}

// RunDir loads and runs every *.yaml scenario under dir, in path order.
// Module paths inside each scenario resolve relative to the scenario file.
// A scenario that fails to load or execute counts as failed; RunDir itself
// only errors when the directory cannot be read.
func RunDir(dir string) (*SuiteResult, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	sort.Strings(paths)

	suite := &SuiteResult{}
	for _, path := range paths {
		suite.Scenarios++

		scenario, err := LoadScenarioWithBasePath(path, filepath.Dir(path))
		if err != nil {
			suite.Failed++
			suite.Failures = append(suite.Failures, ScenarioFailure{
				Path:  path,
				Error: fmt.Sprintf("failed to load scenario: %v", err),
			})
			continue
		}

		result, err := Run(scenario)
		if err != nil {
			suite.Failed++
			suite.Failures = append(suite.Failures, ScenarioFailure{
				Path:  path,
				Name:  scenario.Name,
				Error: fmt.Sprintf("scenario execution failed: %v", err),
			})
			continue
		}

		if !result.Pass {
			suite.Failed++
			suite.Failures = append(suite.Failures, ScenarioFailure{
				Path:  path,
				Name:  scenario.Name,
				Error: fmt.Sprintf("scenario checks failed: %v", result.Errors),
			})
			continue
		}
		suite.Passed++
	}
	return suite, nil
}
