package fanout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"faultline/internal/platform/metrics"
	"faultline/internal/storage"
	"faultline/internal/views"
)

// Config bounds the retry behavior for secondary projection writes. Primary
// writes are never retried here; their failure is surfaced immediately so the
// caller decides.
type Config struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultConfig matches the latency budget of an interactive mutation: a few
// quick attempts, then report the write as degraded and move on.
func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
	}
}

// Writer applies write plans. Primary first, then all secondaries
// concurrently; secondary failures are collected, never fatal.
type Writer struct {
	store storage.IssueProjectionStore
	log   *slog.Logger
	met   *metrics.Metrics
	cfg   Config
}

func NewWriter(store storage.IssueProjectionStore, log *slog.Logger, met *metrics.Metrics, cfg Config) *Writer {
	return &Writer{store: store, log: log, met: met, cfg: cfg}
}

// Apply executes the plan. If the primary write fails the error wraps
// ErrPrimaryWrite and nothing else has been attempted. Once the primary has
// committed, caller cancellation is no longer honored: an authoritative
// primary row with missing projections is recoverable, the same row with a
// silently dropped fan-out is not distinguishable from one.
func (w *Writer) Apply(ctx context.Context, plan views.WritePlan) (Result, error) {
	if err := w.exec(ctx, plan.Primary); err != nil {
		w.met.ProjectionWrites.WithLabelValues(plan.Primary.View.Table, string(plan.Primary.Op), "error").Inc()
		return Result{}, fmt.Errorf("%w: %v", ErrPrimaryWrite, err)
	}
	w.met.ProjectionWrites.WithLabelValues(plan.Primary.View.Table, string(plan.Primary.Op), "ok").Inc()

	return w.Resume(context.WithoutCancel(ctx), plan.Secondaries), nil
}

// Resume executes secondary steps only. It backs both the tail of Apply and
// the degraded-write retry path: callers resubmit Result.Steps() fragments
// verbatim, and because every step is a full-row upsert or a delete by fixed
// key, reapplying a fragment that already landed is a no-op.
func (w *Writer) Resume(ctx context.Context, steps []views.Step) Result {
	var (
		mu       sync.Mutex
		degraded []DegradedWrite
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, step := range steps {
		step := step
		g.Go(func() error {
			if err := w.execWithRetry(ctx, step); err != nil {
				w.met.ProjectionWrites.WithLabelValues(step.View.Table, string(step.Op), "error").Inc()
				w.met.DegradedWrites.WithLabelValues(step.View.Table).Inc()
				w.log.WarnContext(ctx, "projection write degraded",
					"view", step.View.Name,
					"op", string(step.Op),
					"issue_id", step.Key.IssueID.String(),
					"partition", step.Key.Partition,
					"error", err,
				)
				mu.Lock()
				degraded = append(degraded, DegradedWrite{Step: step, Err: err})
				mu.Unlock()
				return nil
			}
			w.met.ProjectionWrites.WithLabelValues(step.View.Table, string(step.Op), "ok").Inc()
			return nil
		})
	}
	_ = g.Wait() // goroutines report through the degraded slice, never an error

	return Result{Degraded: degraded}
}

func (w *Writer) execWithRetry(ctx context.Context, step views.Step) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = w.cfg.InitialInterval
	policy.MaxInterval = w.cfg.MaxInterval

	return backoff.Retry(func() error {
		return w.exec(ctx, step)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, w.cfg.MaxRetries), ctx))
}

func (w *Writer) exec(ctx context.Context, step views.Step) error {
	switch step.Op {
	case views.OpUpsert:
		return w.store.Upsert(ctx, step.View.Table, step.Key, step.Issue)
	case views.OpDelete:
		return w.store.Delete(ctx, step.View.Table, step.Key)
	default:
		return fmt.Errorf("unknown plan op %q", step.Op)
	}
}
