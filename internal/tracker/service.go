// Package tracker is the service facade over the consistency core. It owns
// the mutation pipeline — reconcile, fan out, record history — and the read
// paths the transport layer serves. Handlers stay thin; everything with
// semantics lives here or below.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"faultline/internal/domain"
	"faultline/internal/fanout"
	"faultline/internal/history"
	"faultline/internal/platform/metrics"
	"faultline/internal/stats"
	"faultline/internal/storage"
	"faultline/internal/views"
	"faultline/pkg/platform/sentinel"
)

const listPageSize = 100

// Service exposes the issue-tracking operations. One instance serves all
// requests concurrently; it holds no per-request state.
type Service struct {
	projections storage.IssueProjectionStore
	writer      *fanout.Writer
	recorder    *history.Recorder
	aggregator  *stats.Aggregator
	users       storage.UserStore
	projects    storage.ProjectStore
	log         *slog.Logger
	met         *metrics.Metrics
	tracer      trace.Tracer
	now         func() time.Time
}

// Option configures optional service behavior.
type Option func(*Service)

// WithClock overrides the mutation timestamp source. Tests use it to pin
// created_at values, which participate in every projection key.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(
	projections storage.IssueProjectionStore,
	writer *fanout.Writer,
	recorder *history.Recorder,
	aggregator *stats.Aggregator,
	users storage.UserStore,
	projects storage.ProjectStore,
	log *slog.Logger,
	met *metrics.Metrics,
	opts ...Option,
) *Service {
	s := &Service{
		projections: projections,
		writer:      writer,
		recorder:    recorder,
		aggregator:  aggregator,
		users:       users,
		projects:    projects,
		log:         log,
		met:         met,
		tracer:      otel.Tracer("faultline/tracker"),
		// Cassandra timestamps have millisecond precision; truncating up
		// front keeps in-memory keys identical to their stored form.
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetIssue reads one issue from the primary projection. The primary partition
// clusters by creation time, not issue id, so the lookup pages through the
// project partition until it finds the row.
func (s *Service) GetIssue(ctx context.Context, projectID domain.ProjectID, issueID domain.IssueID) (domain.Issue, error) {
	page := storage.Page{Size: listPageSize}
	for {
		issues, state, err := s.projections.Scan(ctx, storage.TableIssuesByProject, projectID, "", page)
		if err != nil {
			return domain.Issue{}, fmt.Errorf("scan primary projection: %w", err)
		}
		for _, issue := range issues {
			if issue.ID == issueID {
				return issue, nil
			}
		}
		if len(state) == 0 {
			return domain.Issue{}, fmt.Errorf("issue %s: %w", issueID, sentinel.ErrNotFound)
		}
		page.State = state
	}
}

// ListIssuesByProject pages through the primary projection, newest first.
func (s *Service) ListIssuesByProject(ctx context.Context, projectID domain.ProjectID, page storage.Page) ([]domain.Issue, []byte, error) {
	return s.projections.Scan(ctx, storage.TableIssuesByProject, projectID, "", page)
}

// ListIssuesByDimension reads the secondary projection matching the dimension
// name. These reads are eventually consistent: a row can be transiently
// missing or stale while a degraded write awaits retry.
func (s *Service) ListIssuesByDimension(ctx context.Context, dimension, value string, projectID domain.ProjectID, page storage.Page) ([]domain.Issue, []byte, error) {
	view, ok := views.ForDimension(dimension)
	if !ok {
		return nil, nil, fmt.Errorf("dimension %q: %w", dimension, sentinel.ErrNotFound)
	}
	return s.projections.Scan(ctx, view.Table, projectID, value, page)
}

// ListHistory returns an issue's change log in non-decreasing timestamp order.
func (s *Service) ListHistory(ctx context.Context, projectID domain.ProjectID, issueID domain.IssueID, page storage.Page) ([]domain.ChangeEvent, []byte, error) {
	return s.recorder.List(ctx, projectID, issueID, page)
}

// Statistics recomputes per-project aggregates from the primary projection.
func (s *Service) Statistics(ctx context.Context, projectID domain.ProjectID) (domain.ProjectStatistics, error) {
	if _, err := s.projects.FindProject(ctx, projectID); err != nil {
		return domain.ProjectStatistics{}, err
	}
	return s.aggregator.Aggregate(ctx, projectID)
}

// RetryDegraded resubmits previously degraded plan fragments verbatim. The
// steps come from a FanoutResult; re-deriving them from current issue state
// instead could compute an already-advanced row and orphan the stale one.
func (s *Service) RetryDegraded(ctx context.Context, steps []views.Step) fanout.Result {
	return s.writer.Resume(ctx, steps)
}
