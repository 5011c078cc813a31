// Package testutil provides the example programs shared by engine, extract,
// and cli tests: church-unary arithmetic and quicksort over boolean lists,
// built programmatically as AST modules.
package testutil

import "github.com/Wybxc/zamuza/internal/ast"

// In builds a `#name` occurrence term.
func In(ident string) ast.Term {
	return ast.NameTerm(ast.In, ident)
}

// Out builds a `@name` occurrence term.
func Out(ident string) ast.Term {
	return ast.NameTerm(ast.Out, ident)
}

// Eq builds one equation.
func Eq(left, right ast.Term) ast.Equation {
	return ast.Equation{Left: left, Right: right}
}

// Church builds the unary numeral n as nested S applications over Zero.
func Church(n int) ast.Term {
	t := ast.AgentTerm("Zero")
	for i := 0; i < n; i++ {
		t = ast.AgentTerm("S", t)
	}
	return t
}

// Bool builds a True or False agent term.
func Bool(b bool) ast.Term {
	if b {
		return ast.AgentTerm("True")
	}
	return ast.AgentTerm("False")
}

// BoolList builds a Cons/Nil list of boolean terms.
func BoolList(elems ...bool) ast.Term {
	t := ast.AgentTerm("Nil")
	for i := len(elems) - 1; i >= 0; i-- {
		t = ast.AgentTerm("Cons", Bool(elems[i]), t)
	}
	return t
}

func rule(left, right ast.RuleTerm, eqs ...ast.Equation) ast.Rule {
	return ast.Rule{
		TermPair:  ast.RuleTermPair{Left: left, Right: right, Orientation: ast.LeftToRight},
		Equations: eqs,
	}
}

func head(agent string, params ...ast.Name) ast.RuleTerm {
	return ast.RuleTerm{Agent: agent, Body: params}
}

func pIn(ident string) ast.Name  { return ast.Name{Polarity: ast.In, Ident: ident} }
func pOut(ident string) ast.Name { return ast.Name{Polarity: ast.Out, Ident: ident} }

// UnaryRules is the church-unary arithmetic rule set: Add, Mul, Dup (fan-out
// of a numeral), and Era (erasure of a numeral).
func UnaryRules() []ast.Rule {
	return []ast.Rule{
		// Add(a, r) >< Zero: the addend flows through unchanged.
		rule(head("Add", pIn("a"), pOut("r")), head("Zero"),
			Eq(In("a"), Out("r")),
		),
		// Add(a, r) >< S(x): r = S(x + a).
		rule(head("Add", pIn("a"), pOut("r")), head("S", pIn("x")),
			Eq(ast.AgentTerm("S", In("w")), Out("r")),
			Eq(In("x"), ast.AgentTerm("Add", In("a"), Out("w"))),
		),
		// Mul(a, r) >< Zero: r = Zero, a is erased.
		rule(head("Mul", pIn("a"), pOut("r")), head("Zero"),
			Eq(In("a"), ast.AgentTerm("Era")),
			Eq(Out("r"), ast.AgentTerm("Zero")),
		),
		// Mul(a, r) >< S(x): r = x*a + a, with a fanned out.
		rule(head("Mul", pIn("a"), pOut("r")), head("S", pIn("x")),
			Eq(In("a"), ast.AgentTerm("Dup", Out("a1"), Out("a2"))),
			Eq(In("x"), ast.AgentTerm("Mul", In("a1"), Out("w"))),
			Eq(In("a2"), ast.AgentTerm("Add", In("w"), Out("r"))),
		),
		// Dup(b1, b2) >< Zero: both copies are Zero.
		rule(head("Dup", pOut("b1"), pOut("b2")), head("Zero"),
			Eq(Out("b1"), ast.AgentTerm("Zero")),
			Eq(Out("b2"), ast.AgentTerm("Zero")),
		),
		// Dup(b1, b2) >< S(x): peel one S onto each copy, recurse.
		rule(head("Dup", pOut("b1"), pOut("b2")), head("S", pIn("x")),
			Eq(In("x"), ast.AgentTerm("Dup", Out("y1"), Out("y2"))),
			Eq(ast.AgentTerm("S", In("y1")), Out("b1")),
			Eq(ast.AgentTerm("S", In("y2")), Out("b2")),
		),
		// Era >< Zero: nothing left.
		rule(head("Era"), head("Zero")),
		// Era >< S(x): keep erasing.
		rule(head("Era"), head("S", pIn("x")),
			Eq(In("x"), ast.AgentTerm("Era")),
		),
	}
}

// SquareModule builds a module whose Main squares the unary numeral n via
// Dup and Mul, exposing the product on a single interface wire.
func SquareModule(n int) ast.Module {
	main := ast.Net{
		Name:       ast.RootNetName,
		Interfaces: []ast.Name{pOut("result")},
		Equations: []ast.Equation{
			Eq(Church(n), ast.AgentTerm("Dup", Out("c1"), Out("c2"))),
			Eq(In("c1"), ast.AgentTerm("Mul", In("c2"), Out("result"))),
		},
	}
	return ast.Module{Rules: UnaryRules(), Nets: []ast.Net{main}}
}

// QSortRules is quicksort over boolean lists. Part splits a list into the
// False and True buckets (Disp dispatches on each element), QSort recurses
// on both buckets, and App concatenates the results around the pivot.
func QSortRules() []ast.Rule {
	return []ast.Rule{
		// QSort(r) >< Nil.
		rule(head("QSort", pOut("r")), head("Nil"),
			Eq(Out("r"), ast.AgentTerm("Nil")),
		),
		// QSort(r) >< Cons(x, t): partition t, sort both halves, splice
		// the pivot between them.
		rule(head("QSort", pOut("r")), head("Cons", pIn("x"), pIn("t")),
			Eq(In("t"), ast.AgentTerm("Part", Out("f"), Out("g"))),
			Eq(In("f"), ast.AgentTerm("QSort", Out("sf"))),
			Eq(In("g"), ast.AgentTerm("QSort", Out("sg"))),
			Eq(Out("mid"), ast.AgentTerm("Cons", In("x"), In("sg"))),
			Eq(In("sf"), ast.AgentTerm("App", In("mid"), Out("r"))),
		),
		// Part(f, t) >< Nil: both buckets empty.
		rule(head("Part", pOut("f"), pOut("t")), head("Nil"),
			Eq(Out("f"), ast.AgentTerm("Nil")),
			Eq(Out("t"), ast.AgentTerm("Nil")),
		),
		// Part(f, t) >< Cons(x, rest): let the element choose its bucket.
		rule(head("Part", pOut("f"), pOut("t")), head("Cons", pIn("x"), pIn("rest")),
			Eq(In("x"), ast.AgentTerm("Disp", In("rest"), Out("f"), Out("t"))),
		),
		// Disp(rest, f, t) >< False: element joins the False bucket.
		rule(head("Disp", pIn("rest"), pOut("f"), pOut("t")), head("False"),
			Eq(In("rest"), ast.AgentTerm("Part", Out("f1"), Out("t"))),
			Eq(Out("f"), ast.AgentTerm("Cons", ast.AgentTerm("False"), In("f1"))),
		),
		// Disp(rest, f, t) >< True: element joins the True bucket.
		rule(head("Disp", pIn("rest"), pOut("f"), pOut("t")), head("True"),
			Eq(In("rest"), ast.AgentTerm("Part", Out("f"), Out("t1"))),
			Eq(Out("t"), ast.AgentTerm("Cons", ast.AgentTerm("True"), In("t1"))),
		),
		// App(ys, r) >< Nil: nothing to prepend.
		rule(head("App", pIn("ys"), pOut("r")), head("Nil"),
			Eq(In("ys"), Out("r")),
		),
		// App(ys, r) >< Cons(x, t): keep the head, recurse on the tail.
		rule(head("App", pIn("ys"), pOut("r")), head("Cons", pIn("x"), pIn("t")),
			Eq(ast.AgentTerm("Cons", In("x"), In("r1")), Out("r")),
			Eq(In("t"), ast.AgentTerm("App", In("ys"), Out("r1"))),
		),
	}
}

// QSortModule builds a module whose Main sorts the given boolean list,
// exposing the sorted Cons/Nil list on a single interface wire.
func QSortModule(elems ...bool) ast.Module {
	main := ast.Net{
		Name:       ast.RootNetName,
		Interfaces: []ast.Name{pOut("result")},
		Equations: []ast.Equation{
			Eq(BoolList(elems...), ast.AgentTerm("QSort", Out("result"))),
		},
	}
	return ast.Module{Rules: QSortRules(), Nets: []ast.Net{main}}
}
