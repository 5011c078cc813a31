package compiler

import (
	"fmt"

	"github.com/Wybxc/zamuza/internal/ast"
	"github.com/Wybxc/zamuza/internal/graph"
	"github.com/Wybxc/zamuza/internal/symbol"
)

// BuildNet constructs the live graph for the named net: one interface
// endpoint node per interface entry, one node per agent application in the
// body, and wires resolved from the body's linear names.
//
// Net-body agents are declared against the program's symbol table here, so a
// net using a symbol with an arity that disagrees with any other occurrence
// fails with the same arity error rules get.
func (p *Program) BuildNet(name string) (*graph.Graph, error) {
	net, ok := p.Module.FindNet(name)
	if !ok {
		return nil, &CompileError{Code: ErrCodeMissingNet, Name: name}
	}
	return p.buildNet(net)
}

// BuildRoot builds the conventional entry-point net, Main.
func (p *Program) BuildRoot() (*graph.Graph, error) {
	return p.BuildNet(ast.RootNetName)
}

func (p *Program) buildNet(net ast.Net) (*graph.Graph, error) {
	source := net.String()
	g := graph.New(p.Symbols)

	w := &netWalker{syms: p.Symbols, g: g, source: source}
	w.names = newLinearNames[graph.Port](func(a, b graph.Port) {
		g.Connect(a, b)
	})

	// Interface entries are endpoint nodes carrying the reserved interface
	// symbol; their principal ports form the net's fixed external interface.
	// Like rule head parameters, interface occurrences count with inverted
	// polarity.
	iface := make([]graph.Port, len(net.Interfaces))
	for i, n := range net.Interfaces {
		h := g.Allocate(symbol.Interface)
		port := graph.Port{Node: h, Index: graph.PrincipalIndex}
		iface[i] = port
		w.names.attach(n, true, port)
	}

	for _, eq := range net.Equations {
		if err := w.equation(eq); err != nil {
			return nil, err
		}
	}

	if err := w.names.validate(source); err != nil {
		return nil, err
	}

	g.SetInterface(iface)
	return g, nil
}

// netWalker elaborates a net body directly into graph nodes and wires.
// It mirrors ruleWalker, with concrete ports in place of template endpoints.
type netWalker struct {
	syms   *symbol.Table
	g      *graph.Graph
	names  *linearNames[graph.Port]
	source string
}

func (w *netWalker) equation(eq ast.Equation) error {
	l, r := eq.Left, eq.Right
	switch {
	case l.Name != nil && r.Name != nil:
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
		w.g.Connect(pl, pr)
		return nil
	}
}

func (w *netWalker) agent(a *ast.Agent) (graph.Port, error) {
	// Resolution only: the compile pass already declared every module
	// symbol. An unknown symbol here means the net references an agent the
	// module never declares (possible for ad-hoc nets built by callers).
	id, err := w.syms.Resolve(a.Name)
	if err != nil {
		return graph.Port{}, fmt.Errorf("in %s: %w", w.source, err)
	}
	if _, err := w.syms.Declare(a.Name, len(a.Body)); err != nil {
		return graph.Port{}, fmt.Errorf("in %s: %w", w.source, err)
	}
	h := w.g.Allocate(id)

	for j, arg := range a.Body {
		slot := graph.Port{Node: h, Index: j + 1}
		if arg.Name != nil {
			w.names.attach(*arg.Name, false, slot)
			continue
		}
		sub, err := w.agent(arg.Agent)
		if err != nil {
			return graph.Port{}, err
		}
		w.g.Connect(slot, sub)
	}
	return graph.Port{Node: h, Index: graph.PrincipalIndex}, nil
}
