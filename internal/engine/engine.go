// Package engine drives interaction-net reduction to normal form.
//
// The engine owns a net graph exclusively for the duration of one run and
// processes a FIFO work set of active pairs: two nodes wired principal port
// to principal port. Each firing is atomic local graph surgery, touching
// only the two consumed nodes, their immediate neighbors, and the nodes it
// allocates, and completes before the next pair is considered. There is no
// yield point inside a firing; cancellation and budget checks happen between
// work-set iterations.
//
// Determinism contract: pairs are dequeued FIFO, and within one firing newly
// created active pairs are enqueued in the order their defining wire
// reconnections occur (the template's wire order). The same program reduces
// the same way every run.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Wybxc/zamuza/internal/compiler"
	"github.com/Wybxc/zamuza/internal/graph"
	"github.com/Wybxc/zamuza/internal/symbol"
)

// Engine reduces nets against a compiled rule table.
//
// The rule table is immutable and shared; the engine may be reused for any
// number of sequential runs. A single run mutates one graph from exclusive
// ownership of Reduce until it returns.
type Engine struct {
	rules    *compiler.RuleTable
	tokenGen RunTokenGenerator
	journal  Journal
	budget   int // 0 means unbounded
}

// Option configures an Engine.
type Option func(*Engine)

// WithBudget bounds the number of firings per run. A run that would exceed
// the budget stops with a BUDGET_EXCEEDED result instead of diverging.
// Zero (the default) means no bound.
func WithBudget(n int) Option {
	return func(e *Engine) {
		e.budget = n
	}
}

// WithJournal records every firing to the given journal.
func WithJournal(j Journal) Option {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithTokenGenerator overrides the run-token generator (for testing).
func WithTokenGenerator(g RunTokenGenerator) Option {
	return func(e *Engine) {
		e.tokenGen = g
	}
}

// New creates an engine over a compiled rule table.
func New(rules *compiler.RuleTable, opts ...Option) *Engine {
	e := &Engine{
		rules:    rules,
		tokenGen: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stats summarizes one reduction run.
type Stats struct {
	RunToken   string
	Reductions int // firings applied
	StaleSkips int // dequeued pairs whose nodes a prior firing consumed
	Allocated  int // nodes allocated by firings
}

// Reduce rewrites the graph to normal form.
//
// The caller must not touch the graph while Reduce runs. On success the
// graph contains no active pairs and the returned stats describe the run.
// A stuck redex returns a NO_MATCHING_RULE error; budget exhaustion returns
// BUDGET_EXCEEDED; context cancellation returns ctx.Err(). In every error
// case the graph is left after the last completed firing; no firing is ever
// partially applied.
func (e *Engine) Reduce(ctx context.Context, g *graph.Graph) (Stats, error) {
	run := &run{
		engine: e,
		graph:  g,
		queue:  newPairQueue(),
		clock:  NewClock(),
		token:  e.tokenGen.Generate(),
	}
	run.stats.RunToken = run.token

	run.seed()
	slog.Debug("reduction starting",
		"run", run.token,
		"nodes", g.LiveNodes(),
		"initial_pairs", run.queue.len(),
	)

	err := run.loop(ctx)

	slog.Debug("reduction finished",
		"run", run.token,
		"reductions", run.stats.Reductions,
		"stale_skips", run.stats.StaleSkips,
		"nodes", g.LiveNodes(),
		"error", err,
	)
	return run.stats, err
}

// run is the per-invocation state of one reduction.
type run struct {
	engine *Engine
	graph  *graph.Graph
	queue  *pairQueue
	clock  *Clock
	token  string
	stats  Stats

	// enqueued counts pairs discovered by the current firing, for the
	// journal record.
	enqueued int
}

// seed enqueues every active pair present after initial construction, in
// arena order. Each pair is enqueued once: a node only joins when its handle
// orders before its partner's principal peer.
func (r *run) seed() {
	for _, h := range r.graph.Nodes() {
		peer, ok := r.graph.Peer(graph.Port{Node: h, Index: graph.PrincipalIndex})
		if !ok || !peer.IsPrincipal() {
			continue
		}
		if !r.eligible(h, peer.Node) {
			continue
		}
		// Enqueue once per wire: the side visited first wins.
		if peer.Node.Before(h) {
			continue
		}
		r.queue.push(pair{a: h, b: peer.Node})
	}
}

// eligible reports whether two principal-wired nodes form a fireable active
// pair: distinct, live, and neither an interface endpoint.
func (r *run) eligible(a, b graph.Handle) bool {
	if a == b {
		return false
	}
	g := r.graph
	if !g.Alive(a) || !g.Alive(b) {
		return false
	}
	return g.Symbol(a) != symbol.Interface && g.Symbol(b) != symbol.Interface
}

func (r *run) loop(ctx context.Context) error {
	for {
		// Cancellation and budget are checked only between iterations;
		// a firing, once started, always completes.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p, ok := r.queue.pop()
		if !ok {
			return nil // work set empty: normal form
		}

		// A node may appear in two simultaneously enqueued pairs; only one
		// firing may consume it. Generation-tagged handles expose the
		// other pair as stale.
		if !r.graph.Alive(p.a) || !r.graph.Alive(p.b) {
			r.stats.StaleSkips++
			continue
		}

		if r.engine.budget > 0 && r.stats.Reductions >= r.engine.budget {
			return &RuntimeError{
				Code:       ErrCodeBudgetExceeded,
				Budget:     r.engine.budget,
				Reductions: r.stats.Reductions,
			}
		}

		if err := r.fire(ctx, p); err != nil {
			return err
		}
	}
}

// fire looks up and applies the rule for one active pair.
func (r *run) fire(ctx context.Context, p pair) error {
	g := r.graph
	symA := g.Symbol(p.a)
	symB := g.Symbol(p.b)

	tmpl, swapped, ok := r.engine.rules.Lookup(symA, symB)
	if !ok {
		return &RuntimeError{
			Code:        ErrCodeNoMatchingRule,
			LeftSymbol:  g.Symbols().Name(symA),
			RightSymbol: g.Symbols().Name(symB),
			LeftNode:    p.a.String(),
			RightNode:   p.b.String(),
		}
	}

	left, right := p.a, p.b
	if swapped {
		left, right = right, left
	}

	seq := r.clock.Next()
	r.enqueued = 0
	allocated := r.apply(tmpl, left, right)
	r.stats.Reductions++
	r.stats.Allocated += allocated

	slog.Debug("fired",
		"run", r.token,
		"seq", seq,
		"rule", tmpl.Source,
		"left", left,
		"right", right,
		"allocated", allocated,
		"enqueued", r.enqueued,
	)

	if r.engine.journal != nil {
		f := Firing{
			RunToken:    r.token,
			Seq:         seq,
			Rule:        tmpl.Source,
			LeftSymbol:  g.Symbols().Name(tmpl.Left),
			RightSymbol: g.Symbols().Name(tmpl.Right),
			LeftNode:    left.String(),
			RightNode:   right.String(),
			Allocated:   allocated,
			Enqueued:    r.enqueued,
		}
		if err := r.engine.journal.RecordFiring(ctx, f); err != nil {
			return fmt.Errorf("journal firing seq %d: %w", seq, err)
		}
	}
	return nil
}

// afterConnect inspects a freshly created wire and enqueues the active pair
// it forms, if any. Called once per reconnection, in reconnection order.
func (r *run) afterConnect(x, y graph.Port) {
	if !x.IsPrincipal() || !y.IsPrincipal() {
		return
	}
	if !r.eligible(x.Node, y.Node) {
		return
	}
	r.queue.push(pair{a: x.Node, b: y.Node})
	r.enqueued++
}
