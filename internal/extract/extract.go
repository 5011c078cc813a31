// Package extract reads a reduced net back into printable value trees.
//
// Extraction never mutates the graph and never fails: wires that do not lead
// to an agent's principal port render as opaque references, and trees deeper
// than the recursion limit render as "...". A normal form is therefore always
// presentable, cyclic or not.
package extract

import (
	"fmt"
	"strings"

	"github.com/Wybxc/zamuza/internal/graph"
	"github.com/Wybxc/zamuza/internal/symbol"
)

// DefaultMaxDepth bounds value-tree recursion when rendering results.
const DefaultMaxDepth = 1000

// ValueKind discriminates the three shapes a rendered value can take.
type ValueKind int

const (
	// KindAgent is a constructor application.
	KindAgent ValueKind = iota
	// KindRef is an opaque wire reference: the wire's far end is not an
	// agent principal port, so the value is a free connection.
	KindRef
	// KindElided marks a subtree cut off by the depth limit.
	KindElided
)

// Value is one node of a rendered result tree.
type Value struct {
	Kind  ValueKind
	Agent string   // KindAgent
	Args  []*Value // KindAgent
	Ref   int      // KindRef: 1-based reference number
}

func (v *Value) String() string {
	switch v.Kind {
	case KindRef:
		return fmt.Sprintf("x%d", v.Ref)
	case KindElided:
		return "..."
	}
	if len(v.Args) == 0 {
		return v.Agent
	}
	parts := make([]string, len(v.Args))
	for i, a := range v.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", v.Agent, strings.Join(parts, ", "))
}

// Option configures extraction.
type Option func(*extractor)

// WithMaxDepth overrides the rendering depth limit.
func WithMaxDepth(n int) Option {
	return func(x *extractor) {
		x.maxDepth = n
	}
}

// Interfaces renders one value per interface port, in declared order.
//
// Wire references are numbered by first encounter in that order, so a wire
// joining two interface ports renders as the same reference at both.
func Interfaces(g *graph.Graph, opts ...Option) []*Value {
	x := &extractor{
		graph:    g,
		maxDepth: DefaultMaxDepth,
		refs:     make(map[wireKey]int),
	}
	for _, opt := range opts {
		opt(x)
	}

	iface := g.Interface()
	out := make([]*Value, len(iface))
	for i, p := range iface {
		out[i] = x.follow(p, x.maxDepth)
	}
	return out
}

// Port renders the value reachable over the wire at p.
func Port(g *graph.Graph, p graph.Port, opts ...Option) *Value {
	x := &extractor{
		graph:    g,
		maxDepth: DefaultMaxDepth,
		refs:     make(map[wireKey]int),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x.follow(p, x.maxDepth)
}

type extractor struct {
	graph    *graph.Graph
	maxDepth int
	refs     map[wireKey]int
}

// wireKey identifies a physical wire regardless of which end it is seen from.
type wireKey struct {
	a, b graph.Port
}

func keyFor(p, q graph.Port) wireKey {
	if q.Node.Before(p.Node) || (q.Node == p.Node && q.Index < p.Index) {
		p, q = q, p
	}
	return wireKey{a: p, b: q}
}

// follow renders whatever the wire at p leads to. The far end is a value only
// when it is the principal port of a non-interface agent; anything else (a
// dangling port, an auxiliary port, or another interface endpoint) is a free
// wire and renders as a numbered reference.
func (x *extractor) follow(p graph.Port, depth int) *Value {
	if depth <= 0 {
		return &Value{Kind: KindElided}
	}
	g := x.graph

	far, ok := g.Peer(p)
	if !ok {
		return x.ref(p, p)
	}
	if !far.IsPrincipal() || g.Symbol(far.Node) == symbol.Interface {
		return x.ref(p, far)
	}

	sym := g.Symbol(far.Node)
	arity := g.Arity(far.Node)
	v := &Value{
		Kind:  KindAgent,
		Agent: g.Symbols().Name(sym),
		Args:  make([]*Value, arity),
	}
	for i := 1; i <= arity; i++ {
		v.Args[i-1] = x.follow(graph.Port{Node: far.Node, Index: i}, depth-1)
	}
	return v
}

func (x *extractor) ref(p, far graph.Port) *Value {
	key := keyFor(p, far)
	n, ok := x.refs[key]
	if !ok {
		n = len(x.refs) + 1
		x.refs[key] = n
	}
	return &Value{Kind: KindRef, Ref: n}
}
