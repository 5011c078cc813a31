package engine

import "context"

// Firing is the record of one rule application, complete enough to
// reconstruct the reduction order for diagnosis.
type Firing struct {
	RunToken    string // correlates all firings of one reduction run
	Seq         int64  // logical clock stamp, strictly increasing per run
	Rule        string // surface text of the fired rule
	LeftSymbol  string
	RightSymbol string
	LeftNode    string // consumed node ids
	RightNode   string
	Allocated   int // nodes the firing allocated
	Enqueued    int // active pairs the firing discovered
}

// Journal receives firing records as reduction proceeds. Implemented by the
// SQLite store; a nil journal disables recording.
//
// A journal error aborts the run: a half-recorded trace is worse for
// diagnosis than no trace, and the engine makes no guarantees about journal
// contents after a failed write.
type Journal interface {
	RecordFiring(ctx context.Context, f Firing) error
}
