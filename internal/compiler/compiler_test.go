package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wybxc/zamuza/internal/ast"
	"github.com/Wybxc/zamuza/internal/symbol"
	"github.com/Wybxc/zamuza/internal/testutil"
)

func ruleOf(left, right ast.RuleTerm, eqs ...ast.Equation) ast.Rule {
	return ast.Rule{
		TermPair:  ast.RuleTermPair{Left: left, Right: right},
		Equations: eqs,
	}
}

func TestCompile_EraseRuleTemplate(t *testing.T) {
	// Era >< S(x) => x -> Era: one fresh node, one wire from the S side's
	// auxiliary to the fresh node's principal.
	m := ast.Module{
		Rules: []ast.Rule{
			ruleOf(
				ast.RuleTerm{Agent: "Era"},
				ast.RuleTerm{Agent: "S", Body: []ast.Name{{Polarity: ast.In, Ident: "x"}}},
				ast.Equation{
					Left:  ast.NameTerm(ast.In, "x"),
					Right: ast.AgentTerm("Era"),
				},
			),
		},
	}

	prog, err := Compile(m)
	require.NoError(t, err)
	require.Equal(t, 1, prog.Rules.Len())

	era, err := prog.Symbols.Resolve("Era")
	require.NoError(t, err)
	s, err := prog.Symbols.Resolve("S")
	require.NoError(t, err)

	tmpl, swapped, ok := prog.Rules.Lookup(era, s)
	require.True(t, ok)
	assert.False(t, swapped, "Era declared first, so it is the template's left head")
	assert.Equal(t, era, tmpl.Left)
	assert.Equal(t, s, tmpl.Right)
	assert.Equal(t, 0, tmpl.LeftArity)
	assert.Equal(t, 1, tmpl.RightArity)

	require.Equal(t, []symbol.ID{era}, tmpl.Fresh)
	require.Len(t, tmpl.Wires, 1)
	assert.Equal(t, RightAux(1), tmpl.Wires[0].A)
	assert.Equal(t, FreshEndpoint(0, 0), tmpl.Wires[0].B)
}

func TestRuleTable_Lookup_NormalizesOrder(t *testing.T) {
	m := ast.Module{Rules: testutil.UnaryRules()}
	prog, err := Compile(m)
	require.NoError(t, err)

	add, err := prog.Symbols.Resolve("Add")
	require.NoError(t, err)
	zero, err := prog.Symbols.Resolve("Zero")
	require.NoError(t, err)

	t1, swapped1, ok := prog.Rules.Lookup(add, zero)
	require.True(t, ok)
	t2, swapped2, ok := prog.Rules.Lookup(zero, add)
	require.True(t, ok)

	assert.Same(t, t1, t2, "both orientations find the same template")
	assert.NotEqual(t, swapped1, swapped2, "exactly one lookup direction is swapped")
}

func TestCompile_DuplicateRule_UnorderedPair(t *testing.T) {
	// A >< B declared twice, the second time with the heads flipped.
	m := ast.Module{
		Rules: []ast.Rule{
			ruleOf(ast.RuleTerm{Agent: "A"}, ast.RuleTerm{Agent: "B"}),
			ruleOf(ast.RuleTerm{Agent: "B"}, ast.RuleTerm{Agent: "A"}),
		},
	}

	_, err := Compile(m)
	require.Error(t, err)
	assert.True(t, IsCompileError(err, ErrCodeDuplicateRule))
}

func TestCompile_UnboundName(t *testing.T) {
	// x occurs only once.
	m := ast.Module{
		Rules: []ast.Rule{
			ruleOf(
				ast.RuleTerm{Agent: "A", Body: []ast.Name{{Polarity: ast.In, Ident: "x"}}},
				ast.RuleTerm{Agent: "B"},
			),
		},
	}

	_, err := Compile(m)
	require.Error(t, err)
	assert.True(t, IsCompileError(err, ErrCodeUnboundName))

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "x", ce.Name)
	assert.Equal(t, 1, ce.Count)
}

func TestCompile_NonLinearName_ThreeOccurrences(t *testing.T) {
	m := ast.Module{
		Rules: []ast.Rule{
			ruleOf(
				ast.RuleTerm{Agent: "A", Body: []ast.Name{{Polarity: ast.In, Ident: "x"}}},
				ast.RuleTerm{Agent: "B"},
				ast.Equation{
					Left:  ast.NameTerm(ast.In, "x"),
					Right: ast.AgentTerm("C", ast.NameTerm(ast.Out, "x")),
				},
			),
		},
	}

	_, err := Compile(m)
	require.Error(t, err)
	assert.True(t, IsCompileError(err, ErrCodeNonLinearName))
}

func TestCompile_NonLinearName_SamePolarity(t *testing.T) {
	// Both occurrences effectively Out: head #x inverts to @, body @x is @.
	m := ast.Module{
		Rules: []ast.Rule{
			ruleOf(
				ast.RuleTerm{Agent: "A", Body: []ast.Name{{Polarity: ast.In, Ident: "x"}}},
				ast.RuleTerm{Agent: "B"},
				ast.Equation{
					Left:  ast.NameTerm(ast.Out, "x"),
					Right: ast.AgentTerm("C"),
				},
			),
		},
	}

	_, err := Compile(m)
	require.Error(t, err)
	assert.True(t, IsCompileError(err, ErrCodeNonLinearName))

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "occurs twice with the same polarity", ce.Detail)
}

func TestCompile_ArityMismatch_AcrossRuleAndNet(t *testing.T) {
	// S declared with arity 1 in a rule, used with arity 2 in a net body.
	m := ast.Module{
		Rules: []ast.Rule{
			ruleOf(
				ast.RuleTerm{Agent: "Era"},
				ast.RuleTerm{Agent: "S", Body: []ast.Name{{Polarity: ast.In, Ident: "x"}}},
				ast.Equation{Left: ast.NameTerm(ast.In, "x"), Right: ast.AgentTerm("Era")},
			),
		},
		Nets: []ast.Net{{
			Name: "Main",
			Equations: []ast.Equation{{
				Left:  ast.AgentTerm("S", ast.AgentTerm("Era"), ast.AgentTerm("Era")),
				Right: ast.AgentTerm("Era"),
			}},
		}},
	}

	_, err := Compile(m)
	require.Error(t, err)
	assert.True(t, symbol.IsArityMismatch(err))
}

func TestBuildNet_MissingNet(t *testing.T) {
	prog, err := Compile(ast.Module{Rules: testutil.UnaryRules()})
	require.NoError(t, err)

	_, err = prog.BuildNet("Nope")
	require.Error(t, err)
	assert.True(t, IsCompileError(err, ErrCodeMissingNet))
}

func TestBuildRoot_SquareModule(t *testing.T) {
	prog, err := Compile(testutil.SquareModule(3))
	require.NoError(t, err)

	g, err := prog.BuildRoot()
	require.NoError(t, err)
	require.NoError(t, g.CheckInvariants())

	require.Len(t, g.Interface(), 1)
	// One interface endpoint, Zero plus three S nodes, Dup, Mul.
	assert.Equal(t, 7, g.LiveNodes())
}

func TestBuildRoot_QSortModule(t *testing.T) {
	prog, err := Compile(testutil.QSortModule(false, true, true, false, false))
	require.NoError(t, err)

	g, err := prog.BuildRoot()
	require.NoError(t, err)
	require.NoError(t, g.CheckInvariants())
	require.Len(t, g.Interface(), 1)

	// Interface endpoint + 5 Cons + 5 booleans + Nil + QSort.
	assert.Equal(t, 13, g.LiveNodes())
}

func TestBuildNet_VanishingNameCycle(t *testing.T) {
	// `#x -> @x` is a wire with no endpoints: legal, builds nothing.
	m := ast.Module{
		Nets: []ast.Net{{
			Name: "Main",
			Equations: []ast.Equation{{
				Left:  ast.NameTerm(ast.In, "x"),
				Right: ast.NameTerm(ast.Out, "x"),
			}},
		}},
	}

	prog, err := Compile(m)
	require.NoError(t, err)

	g, err := prog.BuildRoot()
	require.NoError(t, err)
	assert.Equal(t, 0, g.LiveNodes())
}

func TestCheckModule_CollectsAllErrors(t *testing.T) {
	m := ast.Module{
		Rules: []ast.Rule{
			// Unbound x.
			ruleOf(
				ast.RuleTerm{Agent: "A", Body: []ast.Name{{Polarity: ast.In, Ident: "x"}}},
				ast.RuleTerm{Agent: "B"},
			),
			// Fine.
			ruleOf(ast.RuleTerm{Agent: "A", Body: []ast.Name{{Polarity: ast.In, Ident: "y"}}},
				ast.RuleTerm{Agent: "C"},
				ast.Equation{Left: ast.NameTerm(ast.In, "y"), Right: ast.AgentTerm("B")},
			),
			// Duplicate of the second pair; the first pair never registered
			// because its rule failed to compile.
			ruleOf(ast.RuleTerm{Agent: "C"}, ast.RuleTerm{Agent: "A", Body: []ast.Name{{Polarity: ast.In, Ident: "z"}}},
				ast.Equation{Left: ast.NameTerm(ast.In, "z"), Right: ast.AgentTerm("B")},
			),
		},
		Nets: []ast.Net{{
			Name: "Main",
			Equations: []ast.Equation{{
				// Unbound w.
				Left:  ast.NameTerm(ast.In, "w"),
				Right: ast.AgentTerm("B"),
			}},
		}},
	}

	errs := CheckModule(m)
	require.Len(t, errs, 3)
	assert.True(t, IsCompileError(errs[0], ErrCodeUnboundName))
	assert.True(t, IsCompileError(errs[1], ErrCodeDuplicateRule))
	assert.True(t, IsCompileError(errs[2], ErrCodeUnboundName))
}

func TestCheckModule_CleanModule(t *testing.T) {
	assert.Nil(t, CheckModule(testutil.SquareModule(2)))
	assert.Nil(t, CheckModule(testutil.QSortModule(true, false)))
}
