package harness

// TraceEvent is one recorded firing, read back from the journal.
type TraceEvent struct {
	Seq       int64  `json:"seq"`
	Left      string `json:"left"`
	Right     string `json:"right"`
	Rule      string `json:"rule"`
	Allocated int    `json:"allocated"`
	Enqueued  int    `json:"enqueued"`
}

// Result is the outcome of one scenario execution.
type Result struct {
	// Pass is true if the expect clause and every assertion held.
	Pass bool `json:"pass"`

	// RunToken identifies the recorded run.
	RunToken string `json:"run_token"`

	// Reductions is the number of firings applied.
	Reductions int `json:"reductions"`

	// Interface holds the rendered interface values at normal form.
	// Empty when the reduction failed.
	Interface []string `json:"interface,omitempty"`

	// Trace contains every firing in reduction order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
