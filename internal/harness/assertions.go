package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when a trace assertion fails. It carries the
// full trace so the failure message shows what actually fired.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s >< %s\n", ev.Seq, ev.Left, ev.Right)
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the trace and returns
// the failure messages. Unknown types were rejected at load time, but are
// reported here too so hand-built assertions fail loudly.
func EvaluateAssertions(trace []TraceEvent, assertions []Assertion) []string {
	var errs []string
	for _, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertPairFired:
			err = assertPairFired(trace, assertion)
		case AssertPairCount:
			err = assertPairCount(trace, assertion)
		case AssertPairOrder:
			err = assertPairOrder(trace, assertion)
		default:
			err = fmt.Errorf("unknown assertion type %q", assertion.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// matchPair reports whether the event fired the given symbol pair.
// The pair is unordered, matching rule lookup.
func matchPair(ev TraceEvent, left, right string) bool {
	return (ev.Left == left && ev.Right == right) ||
		(ev.Left == right && ev.Right == left)
}

func assertPairFired(trace []TraceEvent, assertion Assertion) error {
	for _, ev := range trace {
		if matchPair(ev, assertion.Left, assertion.Right) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertPairFired,
		Expected: fmt.Sprintf("pair %s >< %s fired", assertion.Left, assertion.Right),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

func assertPairCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, ev := range trace {
		if matchPair(ev, assertion.Left, assertion.Right) {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertPairCount,
			Expected: fmt.Sprintf("pair %s >< %s fired %d times", assertion.Left, assertion.Right, assertion.Count),
			Actual:   fmt.Sprintf("fired %d times", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertPairOrder checks that the pairs' first firings appear in the given
// order. Firings of other pairs may intervene.
func assertPairOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make([]int, len(assertion.Pairs))
	for i, p := range assertion.Pairs {
		positions[i] = -1
		for j, ev := range trace {
			if matchPair(ev, p.Left, p.Right) {
				positions[i] = j
				break
			}
		}
		if positions[i] < 0 {
			return &AssertionError{
				Type:     AssertPairOrder,
				Expected: fmt.Sprintf("all pairs present: %v", describePairs(assertion.Pairs)),
				Actual:   fmt.Sprintf("pair %s >< %s never fired", p.Left, p.Right),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(positions); i++ {
		if positions[i-1] >= positions[i] {
			prev, curr := assertion.Pairs[i-1], assertion.Pairs[i]
			return &AssertionError{
				Type:     AssertPairOrder,
				Expected: fmt.Sprintf("pairs in order: %v", describePairs(assertion.Pairs)),
				Actual: fmt.Sprintf("%s >< %s (seq %d) should fire before %s >< %s (seq %d)",
					prev.Left, prev.Right, trace[positions[i-1]].Seq,
					curr.Left, curr.Right, trace[positions[i]].Seq),
				Trace: trace,
			}
		}
	}
	return nil
}

func describePairs(pairs []PairRef) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = fmt.Sprintf("%s >< %s", p.Left, p.Right)
	}
	return out
}
