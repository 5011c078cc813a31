// Package compiler turns parsed modules into the two artifacts the reduction
// engine consumes: a symbol-pair-indexed rule table of rewrite templates, and
// live net graphs built from net bodies.
//
// Compilation resolves every linear name to a concrete port address and then
// discards it; the runtime never sees names.
package compiler

import (
	"fmt"

	"github.com/Wybxc/zamuza/internal/ast"
	"github.com/Wybxc/zamuza/internal/symbol"
)

// Program is the compiled form of a module: the closed symbol table, the
// immutable rule table, and the source module retained for net construction.
type Program struct {
	Symbols *symbol.Table
	Rules   *RuleTable
	Module  ast.Module
}

// Compile builds the symbol and rule tables from a parsed module.
//
// All rule heads and rule-body agents are declared here; net-body agents are
// declared when the net is built, against the same table, so arity
// consistency holds across the whole module.
func Compile(m ast.Module) (*Program, error) {
	syms := symbol.NewTable()
	rules := newRuleTable()

	for _, rule := range m.Rules {
		tmpl, err := compileRule(syms, rule)
		if err != nil {
			return nil, err
		}
		if err := rules.insert(tmpl); err != nil {
			return nil, err
		}
	}

	// Close the symbol table over the whole module: net-body agents are
	// declared here so Resolve is total by the time any net is built, and
	// arity disagreements between rules and nets surface at compile time.
	for _, net := range m.Nets {
		if err := declareNetSymbols(syms, net); err != nil {
			return nil, err
		}
	}

	return &Program{Symbols: syms, Rules: rules, Module: m}, nil
}

func declareNetSymbols(syms *symbol.Table, net ast.Net) error {
	var walk func(t ast.Term) error
	walk = func(t ast.Term) error {
		if t.Agent == nil {
			return nil
		}
		if _, err := syms.Declare(t.Agent.Name, len(t.Agent.Body)); err != nil {
			return fmt.Errorf("in %s: %w", net.String(), err)
		}
		for _, arg := range t.Agent.Body {
			if err := walk(arg); err != nil {
				return err
			}
		}
		return nil
	}
	for _, eq := range net.Equations {
		if err := walk(eq.Left); err != nil {
			return err
		}
		if err := walk(eq.Right); err != nil {
			return err
		}
	}
	return nil
}

// compileRule resolves one rule into a template keyed by the canonicalized
// (smaller symbol id first) head pair. The `>>`/`<<` orientation of the
// source is irrelevant here: both compile to the same symmetric entry.
func compileRule(syms *symbol.Table, rule ast.Rule) (*Template, error) {
	source := rule.String()

	headL := rule.TermPair.Left
	headR := rule.TermPair.Right

	idL, err := syms.Declare(headL.Agent, len(headL.Body))
	if err != nil {
		return nil, fmt.Errorf("in rule `%s`: %w", source, err)
	}
	idR, err := syms.Declare(headR.Agent, len(headR.Body))
	if err != nil {
		return nil, fmt.Errorf("in rule `%s`: %w", source, err)
	}

	// Canonicalize: the template's left head is the smaller symbol id.
	if idL > idR {
		idL, idR = idR, idL
		headL, headR = headR, headL
	}

	tmpl := &Template{
		Left:       idL,
		Right:      idR,
		LeftArity:  len(headL.Body),
		RightArity: len(headR.Body),
		Source:     source,
	}

	w := &ruleWalker{syms: syms, tmpl: tmpl}
	w.names = newLinearNames[Endpoint](func(a, b Endpoint) {
		tmpl.Wires = append(tmpl.Wires, Wire{A: a, B: b})
	})

	// Head parameters are the rule's interface names: the i-th name stands
	// for the external wire at the i-th auxiliary port of the consumed node.
	// Head occurrences count with inverted polarity.
	for i, n := range headL.Body {
		w.names.attach(n, true, LeftAux(i+1))
	}
	for i, n := range headR.Body {
		w.names.attach(n, true, RightAux(i+1))
	}

	for _, eq := range rule.Equations {
		if err := w.equation(eq); err != nil {
			return nil, err
		}
	}

	if err := w.names.validate(source); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// ruleWalker elaborates a rule body into template endpoints.
type ruleWalker struct {
	syms  *symbol.Table
	tmpl  *Template
	names *linearNames[Endpoint]
}

func (w *ruleWalker) equation(eq ast.Equation) error {
	l, r := eq.Left, eq.Right
	switch {
	case l.Name != nil && r.Name != nil:
		// Direct short-circuit between two wires; no node is introduced.
		w.names.link(*l.Name, *r.Name, false, false)
		return nil

	case l.Name != nil:
		p, err := w.agent(r.Agent)
		if err != nil {
			return err
		}
		w.names.attach(*l.Name, false, p)
		return nil

	case r.Name != nil:
		p, err := w.agent(l.Agent)
		if err != nil {
			return err
		}
		w.names.attach(*r.Name, false, p)
		return nil

	default:
		pl, err := w.agent(l.Agent)
		if err != nil {
			return err
		}
		pr, err := w.agent(r.Agent)
		if err != nil {
			return err
		}
		w.tmpl.Wires = append(w.tmpl.Wires, Wire{A: pl, B: pr})
		return nil
	}
}

// agent elaborates an agent application into a fresh template node and
// returns its principal-port endpoint. Argument wires are emitted
// depth-first, in argument order.
func (w *ruleWalker) agent(a *ast.Agent) (Endpoint, error) {
	id, err := w.syms.Declare(a.Name, len(a.Body))
	if err != nil {
		return Endpoint{}, fmt.Errorf("in rule `%s`: %w", w.tmpl.Source, err)
	}
	k := len(w.tmpl.Fresh)
	w.tmpl.Fresh = append(w.tmpl.Fresh, id)

	for j, arg := range a.Body {
		slot := FreshEndpoint(k, j+1)
		if arg.Name != nil {
			w.names.attach(*arg.Name, false, slot)
			continue
		}
		sub, err := w.agent(arg.Agent)
		if err != nil {
			return Endpoint{}, err
		}
		w.tmpl.Wires = append(w.tmpl.Wires, Wire{A: slot, B: sub})
	}
	return FreshEndpoint(k, 0), nil
}
