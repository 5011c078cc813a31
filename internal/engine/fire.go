package engine

import (
	"fmt"

	"github.com/Wybxc/zamuza/internal/compiler"
	"github.com/Wybxc/zamuza/internal/graph"
)

// connector is one half of a slot's linkage during a firing. A slot is an
// auxiliary port of a consumed node: it has an external side (whatever wire
// terminated there before the firing) and a replacement side (what the
// template routes there). Either side is a concrete port or another slot.
type connector struct {
	port   graph.Port
	slot   int
	isSlot bool
	set    bool
}

const (
	viaExt  = 0
	viaRepl = 1
)

// apply performs one atomic firing: it consumes left and right, allocates the
// template's fresh nodes, and reconnects every severed wire according to the
// template. Returns the number of nodes allocated.
//
// Auxiliary ports of the consumed pair act as two-ended connectors: one end
// is the external wire recorded at disconnect time, the other the template's
// replacement link. Wires that pass through one or more connectors are
// resolved by walking the chain between its two terminal ports; a chain with
// no terminals is a closed loop among the consumed ports and simply vanishes.
func (r *run) apply(tmpl *compiler.Template, left, right graph.Handle) int {
	g := r.graph
	m := tmpl.LeftArity + tmpl.RightArity

	// Slot s covers left aux s+1 for s < LeftArity, else right aux
	// s-LeftArity+1.
	auxPort := func(s int) graph.Port {
		if s < tmpl.LeftArity {
			return graph.Port{Node: left, Index: s + 1}
		}
		return graph.Port{Node: right, Index: s - tmpl.LeftArity + 1}
	}
	slotOf := func(p graph.Port) (int, bool) {
		if p.Node == left && p.Index >= 1 {
			return p.Index - 1, true
		}
		if p.Node == right && p.Index >= 1 {
			return tmpl.LeftArity + p.Index - 1, true
		}
		return 0, false
	}

	// Sever the active wire and every auxiliary wire, recording each slot's
	// far end. A wire between two auxiliary ports of the dying pair is
	// recorded as a slot-to-slot link from whichever end is severed first.
	g.Disconnect(graph.Port{Node: left, Index: graph.PrincipalIndex})

	ext := make([]connector, m)
	for s := 0; s < m; s++ {
		if ext[s].set {
			continue
		}
		far, ok := g.Disconnect(auxPort(s))
		if !ok {
			panic(fmt.Sprintf("engine: auxiliary port %v unwired at firing", auxPort(s)))
		}
		if t, internal := slotOf(far); internal {
			ext[s] = connector{slot: t, isSlot: true, set: true}
			ext[t] = connector{slot: s, isSlot: true, set: true}
		} else {
			ext[s] = connector{port: far, set: true}
		}
	}

	g.Free(left)
	g.Free(right)

	fresh := make([]graph.Handle, len(tmpl.Fresh))
	for i, sym := range tmpl.Fresh {
		fresh[i] = g.Allocate(sym)
	}

	resolve := func(e compiler.Endpoint) (graph.Port, int, bool) {
		switch e.Kind {
		case compiler.EndLeftAux:
			return graph.Port{}, e.Aux - 1, true
		case compiler.EndRightAux:
			return graph.Port{}, tmpl.LeftArity + e.Aux - 1, true
		default:
			return graph.Port{Node: fresh[e.Node], Index: e.Port}, 0, false
		}
	}

	// Apply the template's wires in order. Wires between fresh ports connect
	// immediately; wires touching a slot populate that slot's replacement
	// side for the chain walk below.
	repl := make([]connector, m)
	for _, w := range tmpl.Wires {
		pa, sa, aSlot := resolve(w.A)
		pb, sb, bSlot := resolve(w.B)
		switch {
		case !aSlot && !bSlot:
			r.connect(pa, pb)
		case aSlot && bSlot:
			repl[sa] = connector{slot: sb, isSlot: true, set: true}
			repl[sb] = connector{slot: sa, isSlot: true, set: true}
		case aSlot:
			repl[sa] = connector{port: pb, set: true}
		default:
			repl[sb] = connector{port: pa, set: true}
		}
	}

	// Every slot now carries exactly two links. Walk outward from each
	// unvisited slot in both directions to find the chain's terminal ports,
	// then connect them. Entering a slot through its external link exits
	// through its replacement link and vice versa.
	walk := func(start, via int) (graph.Port, bool, []int) {
		cur, out := start, via
		var seen []int
		for {
			var l connector
			if out == viaExt {
				l = ext[cur]
			} else {
				l = repl[cur]
			}
			if !l.set {
				panic(fmt.Sprintf("engine: slot %d of rule %s has no %s link", cur, tmpl.Source, [2]string{"external", "replacement"}[out]))
			}
			if !l.isSlot {
				return l.port, true, seen
			}
			if l.slot == start {
				return graph.Port{}, false, seen // closed loop
			}
			seen = append(seen, l.slot)
			cur = l.slot
			out = viaExt + viaRepl - out
		}
	}

	visited := make([]bool, m)
	for s := 0; s < m; s++ {
		if visited[s] {
			continue
		}
		visited[s] = true
		pa, aOK, seenA := walk(s, viaExt)
		pb, bOK, seenB := walk(s, viaRepl)
		for _, t := range seenA {
			visited[t] = true
		}
		for _, t := range seenB {
			visited[t] = true
		}
		switch {
		case aOK && bOK:
			r.connect(pa, pb)
		case aOK != bOK:
			panic(fmt.Sprintf("engine: half-open connector chain at slot %d of rule %s", s, tmpl.Source))
		}
		// Neither terminal: a cycle entirely among consumed ports; the
		// wire vanishes with the pair.
	}

	return len(fresh)
}

// connect joins two ports and reports any active pair the new wire forms.
func (r *run) connect(p, q graph.Port) {
	r.graph.Connect(p, q)
	r.afterConnect(p, q)
}
