package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wybxc/zamuza/internal/ast"
	"github.com/Wybxc/zamuza/internal/compiler"
	"github.com/Wybxc/zamuza/internal/engine"
	"github.com/Wybxc/zamuza/internal/graph"
	"github.com/Wybxc/zamuza/internal/symbol"
	"github.com/Wybxc/zamuza/internal/testutil"
)

// buildNet compiles a rule-free module around the given Main net.
func buildNet(t *testing.T, net ast.Net) *graph.Graph {
	t.Helper()
	prog, err := compiler.Compile(ast.Module{Nets: []ast.Net{net}})
	require.NoError(t, err)
	g, err := prog.BuildRoot()
	require.NoError(t, err)
	return g
}

func TestInterfaces_AgentTree(t *testing.T) {
	g := buildNet(t, ast.Net{
		Name:       ast.RootNetName,
		Interfaces: []ast.Name{{Polarity: ast.Out, Ident: "r"}},
		Equations: []ast.Equation{
			{Left: testutil.BoolList(true, false), Right: ast.NameTerm(ast.Out, "r")},
		},
	})

	values := Interfaces(g)
	require.Len(t, values, 1)
	assert.Equal(t, "Cons(True, Cons(False, Nil))", values[0].String())
	assert.Equal(t, KindAgent, values[0].Kind)
}

func TestInterfaces_NullaryAgentHasNoParens(t *testing.T) {
	g := buildNet(t, ast.Net{
		Name:       ast.RootNetName,
		Interfaces: []ast.Name{{Polarity: ast.Out, Ident: "r"}},
		Equations: []ast.Equation{
			{Left: ast.AgentTerm("Nil"), Right: ast.NameTerm(ast.Out, "r")},
		},
	})

	values := Interfaces(g)
	require.Len(t, values, 1)
	assert.Equal(t, "Nil", values[0].String())
}

func TestInterfaces_InterfaceWireIsSharedRef(t *testing.T) {
	// Two interface entries joined by a bare wire: both render the same
	// opaque reference.
	g := buildNet(t, ast.Net{
		Name: ast.RootNetName,
		Interfaces: []ast.Name{
			{Polarity: ast.In, Ident: "w"},
			{Polarity: ast.Out, Ident: "w"},
		},
	})

	values := Interfaces(g)
	require.Len(t, values, 2)
	assert.Equal(t, "x1", values[0].String())
	assert.Equal(t, "x1", values[1].String())
	assert.Equal(t, KindRef, values[0].Kind)
}

func TestInterfaces_RefNumbersFollowInterfaceOrder(t *testing.T) {
	g := buildNet(t, ast.Net{
		Name: ast.RootNetName,
		Interfaces: []ast.Name{
			{Polarity: ast.In, Ident: "a"},
			{Polarity: ast.In, Ident: "b"},
			{Polarity: ast.Out, Ident: "a"},
			{Polarity: ast.Out, Ident: "b"},
		},
	})

	values := Interfaces(g)
	require.Len(t, values, 4)
	assert.Equal(t, "x1", values[0].String())
	assert.Equal(t, "x2", values[1].String())
	assert.Equal(t, "x1", values[2].String())
	assert.Equal(t, "x2", values[3].String())
}

func TestInterfaces_DepthLimitElides(t *testing.T) {
	g := buildNet(t, ast.Net{
		Name:       ast.RootNetName,
		Interfaces: []ast.Name{{Polarity: ast.Out, Ident: "r"}},
		Equations: []ast.Equation{
			{Left: testutil.BoolList(true, true, true), Right: ast.NameTerm(ast.Out, "r")},
		},
	})

	values := Interfaces(g, WithMaxDepth(2))
	require.Len(t, values, 1)
	assert.Equal(t, "Cons(True, Cons(..., ...))", values[0].String())
}

func TestPort_CyclicStructureStaysBounded(t *testing.T) {
	tbl := symbol.NewTable()
	a, err := tbl.Declare("A", 1)
	require.NoError(t, err)

	// Two nodes wired into a loop: each principal feeds the other's slot.
	g := graph.New(tbl)
	n1 := g.Allocate(a)
	n2 := g.Allocate(a)
	g.Connect(graph.Port{Node: n1, Index: 1}, graph.Port{Node: n2, Index: 0})
	g.Connect(graph.Port{Node: n2, Index: 1}, graph.Port{Node: n1, Index: 0})

	v := Port(g, graph.Port{Node: n1, Index: 1}, WithMaxDepth(4))
	assert.Equal(t, "A(A(A(A(...))))", v.String())
}

// reduceAndRender runs a full program and renders its interface values, one
// per line.
func reduceAndRender(t *testing.T, m ast.Module) []byte {
	t.Helper()
	prog, err := compiler.Compile(m)
	require.NoError(t, err)
	g, err := prog.BuildRoot()
	require.NoError(t, err)
	_, err = engine.New(prog.Rules).Reduce(context.Background(), g)
	require.NoError(t, err)

	var sb strings.Builder
	for _, v := range Interfaces(g) {
		sb.WriteString(v.String())
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

func TestGolden_NormalForms(t *testing.T) {
	gold := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	gold.Assert(t, "square_three", reduceAndRender(t, testutil.SquareModule(3)))
	gold.Assert(t, "qsort_bools", reduceAndRender(t, testutil.QSortModule(false, true, true, false, false)))
}
