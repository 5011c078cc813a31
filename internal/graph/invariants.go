package graph

import "fmt"

// CheckInvariants verifies the structural invariants the reduction engine
// relies on:
//
//   - wire symmetry: every wired port's peer points back at it, so every port
//     terminates at most one wire (linearity)
//   - no dangling peers: a wire never ends on a dead node
//   - arity consistency: every live node has exactly arity+1 ports for its
//     declared symbol
//   - mandatory connectivity: every live node's principal port is wired
//
// Returns the first violation found, or nil. Intended for tests and
// debugging; it scans the whole arena.
func (g *Graph) CheckInvariants() error {
	for i := range g.nodes {
		nd := &g.nodes[i]
		if !nd.live {
			continue
		}
		h := Handle{index: uint32(i), gen: nd.gen}

		if want := g.syms.Arity(nd.sym) + 1; len(nd.ports) != want {
			return fmt.Errorf("node %s (%s): has %d ports, symbol declares %d",
				h, g.syms.Name(nd.sym), len(nd.ports), want)
		}

		for pi := range nd.ports {
			slot := &nd.ports[pi]
			p := Port{Node: h, Index: pi}
			if !slot.wired {
				if pi == PrincipalIndex {
					return fmt.Errorf("node %s (%s): principal port unwired",
						h, g.syms.Name(nd.sym))
				}
				continue
			}
			if !g.Alive(slot.peer.Node) {
				return fmt.Errorf("port %s: wire ends on dead node %s", p, slot.peer.Node)
			}
			back := g.slot(slot.peer)
			if !back.wired || back.peer != p {
				return fmt.Errorf("port %s: asymmetric wire to %s", p, slot.peer)
			}
		}
	}
	return nil
}
