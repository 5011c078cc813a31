package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario: a module to reduce and the
// outcome the reduction must produce.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden file
	// name when the trace is compared via RunWithGolden.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Module is the path to the module document. Relative paths are
	// resolved against the scenario file's directory by
	// LoadScenarioWithBasePath.
	Module string `yaml:"module"`

	// Net selects the net to reduce. Empty means Main.
	Net string `yaml:"net,omitempty"`

	// Budget bounds the number of firings. Zero means unbounded.
	Budget int `yaml:"budget,omitempty"`

	// RunToken fixes the run token so the recorded trace is reproducible.
	// Empty defaults to "harness-" plus the scenario name.
	RunToken string `yaml:"run_token,omitempty"`

	// Expect describes the required reduction outcome.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions validate the recorded firing trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ExpectClause specifies the expected outcome of the reduction.
type ExpectClause struct {
	// Interface is the exact sequence of interface values at normal form,
	// in declaration order. Nil skips the check.
	Interface []string `yaml:"interface,omitempty"`

	// Reductions is the expected total firing count. Nil skips the check.
	Reductions *int `yaml:"reductions,omitempty"`

	// Error names the expected failure mode: "stuck" or "budget".
	// Empty means the reduction must succeed.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the firing trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "pair_fired": the symbol pair fired at least once
	// - "pair_count": the symbol pair fired exactly Count times
	// - "pair_order": the pairs' first firings appear in the given order
	Type string `yaml:"type"`

	// Left and Right name the symbol pair (order-insensitive).
	// Used by pair_fired and pair_count.
	Left  string `yaml:"left,omitempty"`
	Right string `yaml:"right,omitempty"`

	// Count is the expected number of firings (used by pair_count).
	Count int `yaml:"count,omitempty"`

	// Pairs is the expected firing order (used by pair_order).
	Pairs []PairRef `yaml:"pairs,omitempty"`
}

// PairRef names a symbol pair in a pair_order assertion.
type PairRef struct {
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
}

// Assertion type constants.
const (
	AssertPairFired = "pair_fired"
	AssertPairCount = "pair_count"
	AssertPairOrder = "pair_order"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos surface as load errors instead of silently skipped
// checks.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarioWithBasePath reads a scenario YAML file and resolves its
// module path relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Module != "" && !filepath.IsAbs(scenario.Module) && basePath != "" {
		scenario.Module = filepath.Join(basePath, scenario.Module)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Module == "" {
		return fmt.Errorf("module is required")
	}
	if _, err := os.Stat(s.Module); os.IsNotExist(err) {
		return fmt.Errorf("module file not found: %s", s.Module)
	}

	if s.Expect == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("scenario checks nothing: expect or assertions is required")
	}
	if s.Expect != nil {
		switch s.Expect.Error {
		case "", ExpectErrorStuck, ExpectErrorBudget:
		default:
			return fmt.Errorf("expect.error must be %q or %q, got %q",
				ExpectErrorStuck, ExpectErrorBudget, s.Expect.Error)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// Expected failure modes for ExpectClause.Error.
const (
	ExpectErrorStuck  = "stuck"
	ExpectErrorBudget = "budget"
)

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertPairFired:
		if a.Left == "" || a.Right == "" {
			return fmt.Errorf("assertions[%d]: left and right are required for pair_fired", index)
		}
	case AssertPairCount:
		if a.Left == "" || a.Right == "" {
			return fmt.Errorf("assertions[%d]: left and right are required for pair_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for pair_count", index)
		}
	case AssertPairOrder:
		if len(a.Pairs) == 0 {
			return fmt.Errorf("assertions[%d]: pairs list is required for pair_order", index)
		}
		for j, p := range a.Pairs {
			if p.Left == "" || p.Right == "" {
				return fmt.Errorf("assertions[%d].pairs[%d]: left and right are required", index, j)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
