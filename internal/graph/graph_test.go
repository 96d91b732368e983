package graph_test

import (
	"bytes"
	"testing"

	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules() graph.Rules {
	return graph.Rules{
		graph.Lint: {
			Name:    "verilator_lint",
			Command: "verilator -lint-only --prefix V$name $in > $out",
			Params:  []string{"name"},
		},
		graph.Translate: {
			Name:    "verilator_verilate",
			Command: "verilator --cc --prefix V$name $args $in > $out",
			Params:  []string{"name", "args"},
		},
	}
}

func TestAdd(t *testing.T) {
	t.Parallel()

	g := graph.New("modules", testRules())

	lint := &graph.Step{Kind: graph.Lint, Outputs: []string{"bin/lint/fifo.log"}, Inputs: []string{"rtl/fifo.sv"}, Params: map[string]string{"name": "fifo"}}
	require.NoError(t, g.Add(lint))

	core := &graph.Step{Kind: graph.Lint, Outputs: []string{"bin/lint/core.log"}, Inputs: []string{"rtl/fifo.sv", "rtl/core.sv"}, OrderOnly: []string{"bin/lint/fifo.log"}, Params: map[string]string{"name": "core"}}
	require.NoError(t, g.Add(core))

	assert.Equal(t, 2, g.Len())
	assert.True(t, g.Has("bin/lint/fifo.log"))
	assert.Equal(t, []*graph.Step{lint}, g.Parents(core))
	assert.Empty(t, g.Parents(lint))
	assert.Equal(t, "verilator -lint-only --prefix Vcore rtl/fifo.sv rtl/core.sv > bin/lint/core.log", g.Command(core))
}

func TestAddRejects(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		steps    []*graph.Step
		expected any
	}{
		{
			name: "duplicate-output",
			steps: []*graph.Step{
				{Kind: graph.Lint, Outputs: []string{"out.log"}, Params: map[string]string{"name": "a"}},
				{Kind: graph.Lint, Outputs: []string{"out.log"}, Params: map[string]string{"name": "b"}},
			},
			expected: &graph.DuplicateOutputError{},
		},
		{
			name: "duplicate-output-within-step",
			steps: []*graph.Step{
				{Kind: graph.Lint, Outputs: []string{"out.log", "out.log"}, Params: map[string]string{"name": "a"}},
			},
			expected: &graph.DuplicateOutputError{},
		},
		{
			name: "output-after-use",
			steps: []*graph.Step{
				{Kind: graph.Lint, Outputs: []string{"a.log"}, Inputs: []string{"b.log"}, Params: map[string]string{"name": "a"}},
				{Kind: graph.Lint, Outputs: []string{"b.log"}, Params: map[string]string{"name": "b"}},
			},
			expected: &graph.OutputAfterUseError{},
		},
		{
			name: "missing-parameter",
			steps: []*graph.Step{
				{Kind: graph.Translate, Outputs: []string{"a.log"}, Params: map[string]string{"name": "a"}},
			},
			expected: &graph.MissingParameterError{},
		},
		{
			name: "unknown-kind",
			steps: []*graph.Step{
				{Kind: graph.Link, Outputs: []string{"a"}},
			},
			expected: &graph.UnknownKindError{},
		},
		{
			name: "no-outputs",
			steps: []*graph.Step{
				{Kind: graph.Lint, Params: map[string]string{"name": "a"}},
			},
			expected: &graph.NoOutputsError{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			g := graph.New("modules", testRules())

			var err error
			for _, step := range tc.steps {
				if err = g.Add(step); err != nil {
					break
				}
			}

			require.Error(t, err)
			assert.True(t, errors.As(err, tc.expected), "unexpected error %v", err)
		})
	}
}

func TestWriteNinja(t *testing.T) {
	t.Parallel()

	g := graph.New("modules", testRules())
	require.NoError(t, g.Add(&graph.Step{Kind: graph.Lint, Outputs: []string{"bin/lint/fifo.log"}, Inputs: []string{"rtl/fifo.sv"}, Params: map[string]string{"name": "fifo"}, Prefix: "fifo"}))

	var buf bytes.Buffer
	require.NoError(t, g.WriteNinja(&buf))

	assert.Equal(t, `# Build graph modules, generated by hdlbuild. Do not edit.

rule verilator_lint
  command = verilator -lint-only --prefix V$name $in > $out

# Build steps for fifo
build bin/lint/fifo.log: verilator_lint rtl/fifo.sv
  name = fifo
`, buf.String())
}
