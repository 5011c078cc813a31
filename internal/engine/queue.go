package engine

import (
	"fmt"

	"github.com/Wybxc/zamuza/internal/graph"
)

// pair is a queued active-pair candidate. Handles are generation-tagged, so
// a pair whose node was consumed by an earlier firing is detected as stale at
// dequeue time rather than tracked eagerly.
type pair struct {
	a, b graph.Handle
}

func (p pair) String() string {
	return fmt.Sprintf("(%s, %s)", p.a, p.b)
}

// pairQueue is a FIFO work set of active-pair candidates.
//
// FIFO order plus the fixed wire-reconnection order inside each firing gives
// the engine its deterministic reduction order. The queue is single-owner:
// only the reduction loop touches it, so no locking is needed.
type pairQueue struct {
	pairs []pair
}

func newPairQueue() *pairQueue {
	return &pairQueue{pairs: make([]pair, 0, 64)}
}

// push appends a candidate to the back of the queue.
func (q *pairQueue) push(p pair) {
	q.pairs = append(q.pairs, p)
}

// pop removes and returns the front candidate.
func (q *pairQueue) pop() (pair, bool) {
	if len(q.pairs) == 0 {
		return pair{}, false
	}
	p := q.pairs[0]
	q.pairs[0] = pair{}
	if len(q.pairs) == 1 {
		q.pairs = q.pairs[:0]
	} else {
		q.pairs = q.pairs[1:]
	}
	return p, true
}

// len returns the number of queued candidates.
func (q *pairQueue) len() int {
	return len(q.pairs)
}
