// Package graph is the mutable in-memory interaction net.
//
// Nodes live in an arena indexed by generation-tagged handles; wires are
// symmetric peer references stored on ports. This keeps the naturally cyclic
// node/port/wire structure free of ownership cycles and makes connect,
// disconnect, and active-pair checks O(1).
//
// The graph enforces its own consistency with panics rather than errors:
// wiring an occupied port, touching a dead node, or freeing a node with live
// wires indicates an engine bug, not a program error, and must fail loudly.
package graph

import (
	"fmt"

	"github.com/Wybxc/zamuza/internal/symbol"
)

// Handle identifies a node in the arena. The generation tag detects stale
// handles after a slot is freed and reused.
type Handle struct {
	index uint32
	gen   uint32
}

func (h Handle) String() string {
	return fmt.Sprintf("n%d.%d", h.index, h.gen)
}

// Before gives a total order on handles (arena index, then generation),
// used to visit each wire once when scanning for active pairs.
func (h Handle) Before(o Handle) bool {
	if h.index != o.index {
		return h.index < o.index
	}
	return h.gen < o.gen
}

// PrincipalIndex is the port index of every node's principal port.
// Auxiliary ports are 1..arity, ordered as the symbol's parameter list.
const PrincipalIndex = 0

// Port addresses one connection point: a node handle plus a port index.
type Port struct {
	Node  Handle
	Index int
}

func (p Port) String() string {
	return fmt.Sprintf("%s:%d", p.Node, p.Index)
}

// IsPrincipal reports whether the port is its node's principal port.
func (p Port) IsPrincipal() bool {
	return p.Index == PrincipalIndex
}

type portSlot struct {
	peer  Port
	wired bool
}

type node struct {
	sym   symbol.ID
	gen   uint32
	live  bool
	ports []portSlot // index 0 is principal, 1..arity auxiliary
}

// Graph owns all nodes and wires of one net.
// It is not safe for concurrent use; the reduction engine owns it exclusively
// for the duration of a run.
type Graph struct {
	syms  *symbol.Table
	nodes []node
	free  []uint32 // indices available for reuse
	iface []Port   // root net's external interface, fixed at construction
	live  int
}

// New creates an empty graph over the given symbol table.
func New(syms *symbol.Table) *Graph {
	return &Graph{syms: syms}
}

// Symbols returns the symbol table the graph was built against.
func (g *Graph) Symbols() *symbol.Table {
	return g.syms
}

// Allocate creates a node for the given symbol with all ports unwired.
// The port count is the symbol's declared arity plus the principal port.
func (g *Graph) Allocate(sym symbol.ID) Handle {
	arity := g.syms.Arity(sym)
	var idx uint32
	if n := len(g.free); n > 0 {
		idx = g.free[n-1]
		g.free = g.free[:n-1]
		nd := &g.nodes[idx]
		nd.sym = sym
		nd.live = true
		nd.ports = resizeSlots(nd.ports, arity+1)
	} else {
		idx = uint32(len(g.nodes))
		g.nodes = append(g.nodes, node{
			sym:   sym,
			live:  true,
			ports: make([]portSlot, arity+1),
		})
	}
	g.live++
	return Handle{index: idx, gen: g.nodes[idx].gen}
}

func resizeSlots(slots []portSlot, n int) []portSlot {
	if cap(slots) < n {
		return make([]portSlot, n)
	}
	slots = slots[:n]
	for i := range slots {
		slots[i] = portSlot{}
	}
	return slots
}

// Free returns a node's slot to the arena. The node must be fully unwired;
// freeing a node with live wires is an engine bug.
func (g *Graph) Free(h Handle) {
	nd := g.node(h)
	for i := range nd.ports {
		if nd.ports[i].wired {
			panic(fmt.Sprintf("graph: free of %s with wired port %d", h, i))
		}
	}
	nd.live = false
	nd.gen++
	g.live--
	g.free = append(g.free, h.index)
}

// Alive reports whether the handle refers to a live node. Stale handles
// (freed or reused slots) report false.
func (g *Graph) Alive(h Handle) bool {
	if int(h.index) >= len(g.nodes) {
		return false
	}
	nd := &g.nodes[h.index]
	return nd.live && nd.gen == h.gen
}

// Symbol returns the node's agent symbol.
func (g *Graph) Symbol(h Handle) symbol.ID {
	return g.node(h).sym
}

// Arity returns the node's auxiliary-port count.
func (g *Graph) Arity(h Handle) int {
	return len(g.node(h).ports) - 1
}

// Connect wires two ports together. Both must be unwired; a wire already
// terminating at either port is an engine bug (the PortOccupied condition).
// Self-wires between two distinct ports of one node are legal; p == q is
// not, since a wire needs two endpoints.
func (g *Graph) Connect(p, q Port) {
	if p == q {
		panic(fmt.Sprintf("graph: connect of port %s to itself", p))
	}
	ps := g.slot(p)
	qs := g.slot(q)
	if ps.wired {
		panic(fmt.Sprintf("graph: port occupied: %s already wired to %s", p, ps.peer))
	}
	if qs.wired {
		panic(fmt.Sprintf("graph: port occupied: %s already wired to %s", q, qs.peer))
	}
	ps.peer, ps.wired = q, true
	qs.peer, qs.wired = p, true
}

// Disconnect removes the wire terminating at p and returns its far endpoint.
// Returns ok=false if the port is unwired.
func (g *Graph) Disconnect(p Port) (Port, bool) {
	ps := g.slot(p)
	if !ps.wired {
		return Port{}, false
	}
	far := ps.peer
	ps.wired = false
	ps.peer = Port{}
	fs := g.slot(far)
	fs.wired = false
	fs.peer = Port{}
	return far, true
}

// Peer returns the far endpoint of the wire at p without removing it.
func (g *Graph) Peer(p Port) (Port, bool) {
	ps := g.slot(p)
	if !ps.wired {
		return Port{}, false
	}
	return ps.peer, true
}

// Wired reports whether a wire terminates at p.
func (g *Graph) Wired(p Port) bool {
	return g.slot(p).wired
}

// IsActive reports whether the node's principal port is wired to another
// principal port. This includes the degenerate self-loop configuration; the
// engine additionally requires two distinct non-interface nodes before a
// pair is eligible for rewriting.
func (g *Graph) IsActive(h Handle) bool {
	peer, ok := g.Peer(Port{Node: h, Index: PrincipalIndex})
	if !ok {
		return false
	}
	return peer.IsPrincipal() && g.Alive(peer.Node)
}

// SetInterface fixes the root net's external interface port list.
// Called once at construction; the list is never reallocated afterwards.
func (g *Graph) SetInterface(ports []Port) {
	g.iface = ports
}

// Interface returns the root net's external interface ports in declaration
// order.
func (g *Graph) Interface() []Port {
	return g.iface
}

// LiveNodes returns the number of live nodes in the arena.
func (g *Graph) LiveNodes() int {
	return g.live
}

// Nodes returns handles for every live node, in arena order.
// Intended for invariant checks and extraction, not for the hot path.
func (g *Graph) Nodes() []Handle {
	out := make([]Handle, 0, g.live)
	for i := range g.nodes {
		if g.nodes[i].live {
			out = append(out, Handle{index: uint32(i), gen: g.nodes[i].gen})
		}
	}
	return out
}

func (g *Graph) node(h Handle) *node {
	if int(h.index) >= len(g.nodes) {
		panic(fmt.Sprintf("graph: handle %s out of range", h))
	}
	nd := &g.nodes[h.index]
	if !nd.live || nd.gen != h.gen {
		panic(fmt.Sprintf("graph: access to dead node %s", h))
	}
	return nd
}

func (g *Graph) slot(p Port) *portSlot {
	nd := g.node(p.Node)
	if p.Index < 0 || p.Index >= len(nd.ports) {
		panic(fmt.Sprintf("graph: port index %d out of range for %s (arity %d)",
			p.Index, p.Node, len(nd.ports)-1))
	}
	return &nd.ports[p.Index]
}
