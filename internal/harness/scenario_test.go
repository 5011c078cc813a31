package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenarioWithBasePath("testdata/scenarios/add_pass.yaml", "testdata/scenarios")
	require.NoError(t, err)

	assert.Equal(t, "add-two-one", s.Name)
	assert.Equal(t, filepath.Join("testdata", "add.cue"), s.Module)
	assert.Equal(t, "trace-add", s.RunToken)
	require.NotNil(t, s.Expect)
	assert.Equal(t, []string{"S(S(S(Zero)))"}, s.Expect.Interface)
	require.NotNil(t, s.Expect.Reductions)
	assert.Equal(t, 3, *s.Expect.Reductions)
	require.Len(t, s.Assertions, 3)
	assert.Equal(t, AssertPairCount, s.Assertions[0].Type)
	assert.Equal(t, 2, s.Assertions[0].Count)
	assert.Equal(t, []PairRef{{Left: "Add", Right: "S"}, {Left: "Add", Right: "Zero"}}, s.Assertions[2].Pairs)
}

func TestLoadScenario_AbsoluteModulePathKept(t *testing.T) {
	module, err := filepath.Abs("testdata/stuck.cue")
	require.NoError(t, err)
	path := writeScenario(t, "name: n\ndescription: d\nmodule: "+module+"\nexpect: {error: stuck}\n")

	s, err := LoadScenarioWithBasePath(path, "/somewhere/else")
	require.NoError(t, err)
	assert.Equal(t, module, s.Module)
}

func TestLoadScenario_UnknownFieldRejected(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: has a misspelled key
module: testdata/add.cue
assertion:
  - type: pair_fired
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no name",
			content: "description: d\nmodule: m.cue\n",
			wantErr: "name is required",
		},
		{
			name:    "no description",
			content: "name: n\nmodule: m.cue\n",
			wantErr: "description is required",
		},
		{
			name:    "no module",
			content: "name: n\ndescription: d\n",
			wantErr: "module is required",
		},
		{
			name:    "module file missing",
			content: "name: n\ndescription: d\nmodule: /nonexistent/m.cue\nexpect: {error: stuck}\n",
			wantErr: "module file not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_NoChecksRejected(t *testing.T) {
	path := writeScenario(t, `
name: empty
description: neither expect nor assertions
module: testdata/stuck.cue
`)
	_, err := LoadScenarioWithBasePath(path, ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checks nothing")
}

func TestLoadScenario_BadExpectError(t *testing.T) {
	path := writeScenario(t, `
name: bad
description: unknown failure mode
module: testdata/stuck.cue
expect:
  error: explode
`)
	_, err := LoadScenarioWithBasePath(path, ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `got "explode"`)
}

func TestLoadScenario_BadAssertions(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown type",
			yaml:    "  - type: trace_contains\n",
			wantErr: "unknown assertion type",
		},
		{
			name:    "pair_fired missing right",
			yaml:    "  - type: pair_fired\n    left: Add\n",
			wantErr: "left and right are required for pair_fired",
		},
		{
			name:    "pair_count negative",
			yaml:    "  - type: pair_count\n    left: Add\n    right: S\n    count: -1\n",
			wantErr: "count must be non-negative",
		},
		{
			name:    "pair_order empty",
			yaml:    "  - type: pair_order\n",
			wantErr: "pairs list is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "name: n\ndescription: d\nmodule: testdata/stuck.cue\nassertions:\n" + tt.yaml
			_, err := LoadScenarioWithBasePath(writeScenario(t, content), ".")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
