// Package history owns the append-only change log. One event per changed
// field per mutation; events are appended regardless of how the projection
// fan-out went, because history's authority derives from the primary write,
// not from projection completeness.
package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"faultline/internal/domain"
	"faultline/internal/platform/metrics"
	"faultline/internal/storage"
)

// EventPublisher streams recorded events to downstream consumers.
// Implementations must be fire-and-forget: a slow or failing broker can never
// block history persistence.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.ChangeEvent)
}

// Recorder appends change events to the history store and optionally streams
// them out.
type Recorder struct {
	store storage.HistoryStore
	pub   EventPublisher
	log   *slog.Logger
	met   *metrics.Metrics
}

// NewRecorder builds a Recorder. pub may be nil when no stream is configured.
func NewRecorder(store storage.HistoryStore, pub EventPublisher, log *slog.Logger, met *metrics.Metrics) *Recorder {
	return &Recorder{store: store, pub: pub, log: log, met: met}
}

// Record appends every event, collecting append failures instead of stopping
// at the first one. The returned error is a report for the caller's result;
// it never blocks or reverses already-applied projection writes.
func (r *Recorder) Record(ctx context.Context, events []domain.ChangeEvent) error {
	var merr *multierror.Error
	for _, ev := range events {
		if err := r.store.Append(ctx, ev); err != nil {
			r.met.HistoryAppends.WithLabelValues("error").Inc()
			r.log.ErrorContext(ctx, "history append failed",
				"issue_id", ev.IssueID.String(),
				"field", ev.Field,
				"error", err,
			)
			merr = multierror.Append(merr, fmt.Errorf("append %s event: %w", ev.Field, err))
			continue
		}
		r.met.HistoryAppends.WithLabelValues("ok").Inc()
		if r.pub != nil {
			r.pub.Publish(ctx, ev)
		}
	}
	return merr.ErrorOrNil()
}

// List returns the history of one issue ordered by occurrence time. The read
// is idempotent: absent intervening mutations, consecutive calls return the
// identical sequence.
func (r *Recorder) List(ctx context.Context, projectID domain.ProjectID, issueID domain.IssueID, page storage.Page) ([]domain.ChangeEvent, []byte, error) {
	return r.store.List(ctx, projectID, issueID, page)
}
