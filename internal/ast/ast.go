// Package ast defines the abstract syntax consumed from the parser frontend.
//
// The core never sees program text. A separate parser (out of scope here)
// produces Module values; everything downstream (symbol interning, rule
// compilation, net construction) works on these shapes.
//
// Equations are undirected: `Term -> Term` and `Term <- Term` both decode to
// the same Equation. The arrow in the surface syntax only aids readability of
// data-flow intent; it carries no meaning after decoding.
package ast

import (
	"fmt"
	"strings"
)

// Polarity distinguishes the two halves of a linear name pair.
// A name must occur exactly once with each polarity; the pair denotes the two
// endpoints of a single wire.
type Polarity int

const (
	// In is the `#name` occurrence of a linear name.
	In Polarity = iota
	// Out is the `@name` occurrence of a linear name.
	Out
)

func (p Polarity) String() string {
	if p == Out {
		return "@"
	}
	return "#"
}

// Name is a linear, use-twice wire token. Names exist only at construction
// time; the runtime graph has no concept of them.
type Name struct {
	Polarity Polarity
	Ident    string
}

func (n Name) String() string {
	return n.Polarity.String() + n.Ident
}

// Term is either a bare Name or an Agent application.
// Exactly one of the two fields is set.
type Term struct {
	Name  *Name
	Agent *Agent
}

// NameTerm builds a Term wrapping a name occurrence.
func NameTerm(p Polarity, ident string) Term {
	return Term{Name: &Name{Polarity: p, Ident: ident}}
}

// AgentTerm builds a Term applying an agent to argument terms.
func AgentTerm(name string, args ...Term) Term {
	return Term{Agent: &Agent{Name: name, Body: args}}
}

func (t Term) String() string {
	switch {
	case t.Name != nil:
		return t.Name.String()
	case t.Agent != nil:
		return t.Agent.String()
	default:
		return "<empty term>"
	}
}

// Agent is a constructor application: a symbol name plus ordered argument
// terms. The argument count fixes the symbol's arity; every occurrence of the
// same symbol must agree.
type Agent struct {
	Name string
	Body []Term
}

func (a Agent) String() string {
	if len(a.Body) == 0 {
		return a.Name
	}
	parts := make([]string, len(a.Body))
	for i, t := range a.Body {
		parts[i] = t.String()
	}
	return fmt.Sprintf("%s(%s)", a.Name, strings.Join(parts, ", "))
}

// Equation connects two terms with an undirected wire.
type Equation struct {
	Left  Term
	Right Term
}

func (e Equation) String() string {
	return fmt.Sprintf("%s -> %s", e.Left, e.Right)
}

// RuleTerm is one head of a rule: an agent symbol whose parameter list is
// names only (the rule's interface names).
type RuleTerm struct {
	Agent string
	Body  []Name
}

func (rt RuleTerm) String() string {
	if len(rt.Body) == 0 {
		return rt.Agent
	}
	parts := make([]string, len(rt.Body))
	for i, n := range rt.Body {
		parts[i] = n.String()
	}
	return fmt.Sprintf("%s(%s)", rt.Agent, strings.Join(parts, ", "))
}

// Orientation is the surface marker between the two rule heads. It only
// records which head was written first; both orientations compile to one
// symmetric rule keyed by the unordered symbol pair.
type Orientation int

const (
	// LeftToRight is the `>>` marker.
	LeftToRight Orientation = iota
	// RightToLeft is the `<<` marker.
	RightToLeft
)

func (o Orientation) String() string {
	if o == RightToLeft {
		return "<<"
	}
	return ">>"
}

// RuleTermPair is the pair of heads naming the active pair a rule rewrites.
type RuleTermPair struct {
	Left        RuleTerm
	Right       RuleTerm
	Orientation Orientation
}

func (p RuleTermPair) String() string {
	return fmt.Sprintf("%s %s %s", p.Left, p.Orientation, p.Right)
}

// Rule is a rewrite declaration: two heads plus the replacement net described
// as equations. An empty body (`_` in the surface syntax) is a valid rule that
// simply erases the pair.
type Rule struct {
	TermPair  RuleTermPair
	Equations []Equation
}

func (r Rule) String() string {
	if len(r.Equations) == 0 {
		return r.TermPair.String() + " => _"
	}
	parts := make([]string, len(r.Equations))
	for i, e := range r.Equations {
		parts[i] = e.String()
	}
	return fmt.Sprintf("%s => %s", r.TermPair, strings.Join(parts, ", "))
}

// Net is a named entry point: an ordered external interface plus the
// equations building its initial graph.
type Net struct {
	Name       string
	Interfaces []Name
	Equations  []Equation
}

// RootNetName is the net treated as the program entry point by convention.
const RootNetName = "Main"

func (n Net) String() string {
	ifaces := make([]string, len(n.Interfaces))
	for i, name := range n.Interfaces {
		ifaces[i] = name.String()
	}
	body := "_"
	if len(n.Equations) > 0 {
		parts := make([]string, len(n.Equations))
		for i, e := range n.Equations {
			parts[i] = e.String()
		}
		body = strings.Join(parts, ", ")
	}
	return fmt.Sprintf("net %s(%s) = %s", n.Name, strings.Join(ifaces, ", "), body)
}

// Module is a whole parsed program: rule declarations plus net definitions.
type Module struct {
	Rules []Rule
	Nets  []Net
}

// FindNet returns the net with the given name, or false if absent.
func (m Module) FindNet(name string) (Net, bool) {
	for _, n := range m.Nets {
		if n.Name == name {
			return n, true
		}
	}
	return Net{}, false
}
