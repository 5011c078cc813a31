package compiler

import (
	"fmt"

	"github.com/Wybxc/zamuza/internal/symbol"
)

// EndpointKind distinguishes the three places a template wire can end.
type EndpointKind int

const (
	// EndFresh addresses a port of a node the firing allocates.
	EndFresh EndpointKind = iota
	// EndLeftAux stands for the remote end of an auxiliary port of the
	// consumed node matching the template's left (smaller-id) head.
	EndLeftAux
	// EndRightAux stands for the remote end of an auxiliary port of the
	// consumed node matching the template's right head.
	EndRightAux
)

// Endpoint is one end of a template wire, expressed purely in port offsets.
// Names are resolved away entirely before a template exists.
type Endpoint struct {
	Kind EndpointKind
	Node int // fresh-node ordinal (EndFresh only)
	Port int // port index: 0 principal, 1..arity auxiliary (EndFresh only)
	Aux  int // auxiliary index 1..arity (EndLeftAux/EndRightAux only)
}

func (e Endpoint) String() string {
	switch e.Kind {
	case EndLeftAux:
		return fmt.Sprintf("left.%d", e.Aux)
	case EndRightAux:
		return fmt.Sprintf("right.%d", e.Aux)
	default:
		return fmt.Sprintf("new%d:%d", e.Node, e.Port)
	}
}

// FreshEndpoint addresses port p of the firing's k-th allocated node.
func FreshEndpoint(k, p int) Endpoint {
	return Endpoint{Kind: EndFresh, Node: k, Port: p}
}

// LeftAux addresses the remote end of the left consumed node's i-th
// auxiliary port.
func LeftAux(i int) Endpoint {
	return Endpoint{Kind: EndLeftAux, Aux: i}
}

// RightAux addresses the remote end of the right consumed node's i-th
// auxiliary port.
func RightAux(i int) Endpoint {
	return Endpoint{Kind: EndRightAux, Aux: i}
}

// Wire is one rewiring instruction: connect the two endpoints. Aux endpoints
// denote the external wire previously terminating at that auxiliary port; a
// wire between two aux endpoints is the short-circuit case.
type Wire struct {
	A, B Endpoint
}

func (w Wire) String() string {
	return fmt.Sprintf("%s ~ %s", w.A, w.B)
}

// Template is one compiled rewrite rule, keyed by the unordered symbol pair
// {Left, Right} with Left <= Right. The engine normalizes lookups so the
// orientation of a discovered active pair never blocks a match.
type Template struct {
	Left       symbol.ID
	Right      symbol.ID
	LeftArity  int
	RightArity int

	// Fresh lists the symbols of the nodes every firing allocates,
	// in allocation order.
	Fresh []symbol.ID

	// Wires lists the rewiring instructions in the order they are applied.
	// This order is part of the engine's determinism contract: newly created
	// active pairs are discovered in exactly this order.
	Wires []Wire

	// Source is the rule's surface text, kept for diagnostics.
	Source string
}

type pairKey struct {
	left, right symbol.ID // left <= right
}

// RuleTable is the immutable, symbol-pair-indexed collection of templates.
// Built once from all parsed rules and shared read-only by the engine.
type RuleTable struct {
	templates map[pairKey]*Template
}

func newRuleTable() *RuleTable {
	return &RuleTable{templates: make(map[pairKey]*Template)}
}

func (rt *RuleTable) insert(t *Template) error {
	key := pairKey{left: t.Left, right: t.Right}
	if prior, ok := rt.templates[key]; ok {
		return &CompileError{
			Code:   ErrCodeDuplicateRule,
			Detail: fmt.Sprintf("rule %s conflicts with earlier rule %s", t.Source, prior.Source),
		}
	}
	rt.templates[key] = t
	return nil
}

// Lookup finds the template for the unordered pair {a, b}. swapped reports
// that the caller's first symbol matches the template's right head, so the
// caller must present its nodes in the opposite order.
func (rt *RuleTable) Lookup(a, b symbol.ID) (t *Template, swapped bool, ok bool) {
	if a <= b {
		t, ok = rt.templates[pairKey{left: a, right: b}]
		return t, false, ok
	}
	t, ok = rt.templates[pairKey{left: b, right: a}]
	return t, true, ok
}

// Len returns the number of compiled rules.
func (rt *RuleTable) Len() int {
	return len(rt.templates)
}
