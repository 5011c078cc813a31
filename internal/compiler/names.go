package compiler

import "github.com/Wybxc/zamuza/internal/ast"

// linearNames resolves the use-twice name discipline into wires between
// terminals of type T (template endpoints for rules, concrete graph ports for
// nets).
//
// Each name is a connector with room for two attachments. An attachment is
// either a terminal (the port address being elaborated when the occurrence
// was seen) or a link to another name (a bare name–name equation, which
// short-circuits the two wires). Wires are emitted eagerly, at the moment a
// connector chain completes; this fixed order is what makes compilation, and
// therefore reduction, deterministic.
//
// Effective polarity: an occurrence in head position (a rule head parameter
// or a net interface entry) counts with inverted polarity, because the head
// names the outside of the wire. Every name must end with exactly one
// effective # and one effective @ occurrence.
type linearNames[T any] struct {
	byName map[string]*nameState[T]
	order  []string // first-occurrence order, for deterministic error reporting
	emit   func(a, b T)
}

type nameState[T any] struct {
	count     int
	inSeen    bool // effective # occurrence seen
	outSeen   bool // effective @ occurrence seen
	terminals []T
	links     []*nameState[T]
	resolved  bool
}

func newLinearNames[T any](emit func(a, b T)) *linearNames[T] {
	return &linearNames[T]{
		byName: make(map[string]*nameState[T]),
		emit:   emit,
	}
}

func (ln *linearNames[T]) state(ident string) *nameState[T] {
	st, ok := ln.byName[ident]
	if !ok {
		st = &nameState[T]{}
		ln.byName[ident] = st
		ln.order = append(ln.order, ident)
	}
	return st
}

// note records one occurrence of a name, tracking linearity.
func (ln *linearNames[T]) note(n ast.Name, inverted bool) *nameState[T] {
	st := ln.state(n.Ident)
	st.count++
	pol := n.Polarity
	if inverted {
		if pol == ast.In {
			pol = ast.Out
		} else {
			pol = ast.In
		}
	}
	if pol == ast.In {
		st.inSeen = true
	} else {
		st.outSeen = true
	}
	return st
}

// attach records a name occurrence whose wire endpoint is the terminal t.
func (ln *linearNames[T]) attach(n ast.Name, inverted bool, t T) {
	st := ln.note(n, inverted)
	st.terminals = append(st.terminals, t)
	ln.tryEmit(st)
}

// link records a bare name–name equation: the two names' remote endpoints
// are wired directly to each other and no node is introduced for the
// equation itself.
func (ln *linearNames[T]) link(a, b ast.Name, invertedA, invertedB bool) {
	sa := ln.note(a, invertedA)
	sb := ln.note(b, invertedB)
	sa.links = append(sa.links, sb)
	sb.links = append(sb.links, sa)
	ln.tryEmit(sa)
}

// tryEmit emits the wire for the connector chain containing st once every
// connector in the chain has both of its attachments. A chain that closes on
// itself (a pure name cycle, such as `#x -> @x`) denotes a wire with no
// endpoints; it vanishes and emits nothing.
func (ln *linearNames[T]) tryEmit(st *nameState[T]) {
	members := chainMembers(st)
	var terminals []T
	for _, s := range members {
		if s.count < 2 || s.resolved {
			return // chain not finished, or linearity already violated
		}
		terminals = append(terminals, s.terminals...)
	}
	if len(terminals) > 2 {
		return // over-used name; validation reports it
	}
	for _, s := range members {
		s.resolved = true
	}
	if len(terminals) == 2 {
		ln.emit(terminals[0], terminals[1])
	}
}

// chainMembers collects the connectors reachable from st through name–name
// links, in deterministic depth-first order.
func chainMembers[T any](st *nameState[T]) []*nameState[T] {
	var out []*nameState[T]
	seen := map[*nameState[T]]bool{}
	var walk func(*nameState[T])
	walk = func(s *nameState[T]) {
		if seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
		for _, next := range s.links {
			walk(next)
		}
	}
	walk(st)
	return out
}

// validate checks the linearity discipline for every name seen:
// exactly two occurrences, one effective # and one effective @.
// context is the surface text of the enclosing rule or net.
func (ln *linearNames[T]) validate(context string) error {
	for _, ident := range ln.order {
		st := ln.byName[ident]
		switch {
		case st.count < 2:
			return &CompileError{
				Code:    ErrCodeUnboundName,
				Name:    ident,
				Count:   st.count,
				Context: context,
			}
		case st.count > 2:
			return &CompileError{
				Code:    ErrCodeNonLinearName,
				Name:    ident,
				Count:   st.count,
				Context: context,
			}
		case !st.inSeen || !st.outSeen:
			return &CompileError{
				Code:    ErrCodeNonLinearName,
				Name:    ident,
				Count:   st.count,
				Context: context,
				Detail:  "occurs twice with the same polarity",
			}
		}
	}
	return nil
}
