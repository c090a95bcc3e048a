// Package fanout executes projection write plans against the row store. It is
// the only component that touches secondary projections, and it owns the
// partial-failure contract: the primary write is all-or-nothing for the
// mutation, secondary writes degrade instead of failing it.
package fanout

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"faultline/internal/views"
)

// ErrPrimaryWrite marks a failed primary projection write. The mutation as a
// whole has failed and no secondary write was attempted.
var ErrPrimaryWrite = errors.New("primary projection write failed")

// DegradedWrite names one secondary step that did not land after bounded
// retries. The step is carried verbatim so the caller can retry exactly this
// fragment later without re-deriving it from (possibly already advanced)
// issue state.
type DegradedWrite struct {
	Step views.Step
	Err  error
}

func (d DegradedWrite) String() string {
	return fmt.Sprintf("%s %s %s/%s", d.Step.Op, d.Step.View.Name, d.Step.Key.Partition, d.Step.Key.IssueID)
}

// Result reports the per-projection outcome of an applied plan. A non-empty
// Degraded list still means the mutation succeeded: the primary row is
// authoritative and the named secondary rows are recoverable views awaiting
// retry. HistoryErr is set by the caller when the history append failed; it
// never reverses the applied writes.
type Result struct {
	Degraded   []DegradedWrite
	HistoryErr error
}

// Clean reports that every projection write landed and history was recorded.
func (r Result) Clean() bool {
	return len(r.Degraded) == 0 && r.HistoryErr == nil
}

// DegradedErr aggregates the secondary failures into one error, or nil when
// every secondary write landed.
func (r Result) DegradedErr() error {
	var merr *multierror.Error
	for _, d := range r.Degraded {
		merr = multierror.Append(merr, fmt.Errorf("%s: %w", d, d.Err))
	}
	return merr.ErrorOrNil()
}

// Steps returns the degraded plan fragments for resubmission.
func (r Result) Steps() []views.Step {
	steps := make([]views.Step, 0, len(r.Degraded))
	for _, d := range r.Degraded {
		steps = append(steps, d.Step)
	}
	return steps
}
