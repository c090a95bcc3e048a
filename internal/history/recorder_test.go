package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faultline/internal/domain"
	"faultline/internal/platform/metrics"
	"faultline/internal/storage"
	"faultline/internal/storage/memory"
)

type flakyHistoryStore struct {
	*memory.Store
	failFields map[string]error
}

func (f *flakyHistoryStore) Append(ctx context.Context, event domain.ChangeEvent) error {
	if err := f.failFields[event.Field]; err != nil {
		return err
	}
	return f.Store.Append(ctx, event)
}

type capturePublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (c *capturePublisher) Publish(_ context.Context, event domain.ChangeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func newTestRecorder(store storage.HistoryStore, pub EventPublisher) *Recorder {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRecorder(store, pub, log, metrics.New(prometheus.NewRegistry()))
}

func TestRecordAppendsAllEvents(t *testing.T) {
	store := memory.New()
	rec := newTestRecorder(store, nil)
	issue, actor := sampleIssue()
	events := CreationEvents(issue, actor, issue.CreatedAt)

	require.NoError(t, rec.Record(context.Background(), events))

	stored, _, err := rec.List(context.Background(), issue.ProjectID, issue.ID, storage.Page{Size: 20})
	require.NoError(t, err)
	assert.Len(t, stored, len(events))
}

func TestRecordCollectsFailuresAndKeepsGoing(t *testing.T) {
	store := &flakyHistoryStore{
		Store:      memory.New(),
		failFields: map[string]error{domain.FieldStatus: errors.New("write timeout")},
	}
	rec := newTestRecorder(store, nil)
	issue, actor := sampleIssue()
	events := CreationEvents(issue, actor, issue.CreatedAt)

	err := rec.Record(context.Background(), events)
	require.Error(t, err)

	// Every event except the failing one must have landed.
	stored, _, listErr := rec.List(context.Background(), issue.ProjectID, issue.ID, storage.Page{Size: 20})
	require.NoError(t, listErr)
	assert.Len(t, stored, len(events)-1)
	for _, e := range stored {
		assert.NotEqual(t, domain.FieldStatus, e.Field)
	}
}

func TestRecordPublishesOnlySuccessfulAppends(t *testing.T) {
	store := &flakyHistoryStore{
		Store:      memory.New(),
		failFields: map[string]error{domain.FieldTitle: errors.New("unavailable")},
	}
	pub := &capturePublisher{}
	rec := newTestRecorder(store, pub)
	issue, actor := sampleIssue()
	events := CreationEvents(issue, actor, issue.CreatedAt)

	_ = rec.Record(context.Background(), events)

	for _, e := range pub.events {
		assert.NotEqual(t, domain.FieldTitle, e.Field)
	}
	assert.Len(t, pub.events, len(events)-1)
}

func TestListOrderedByOccurrence(t *testing.T) {
	store := memory.New()
	rec := newTestRecorder(store, nil)
	issue, actor := sampleIssue()

	first := UpdateEvents(issue, withStatus(issue, domain.StatusInProgress), actor, issue.CreatedAt.Add(time.Minute))
	second := UpdateEvents(withStatus(issue, domain.StatusInProgress), withStatus(issue, domain.StatusResolved), actor, issue.CreatedAt.Add(2*time.Minute))
	require.NoError(t, rec.Record(context.Background(), second))
	require.NoError(t, rec.Record(context.Background(), first))

	stored, _, err := rec.List(context.Background(), issue.ProjectID, issue.ID, storage.Page{Size: 20})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.True(t, !stored[1].OccurredAt.Before(stored[0].OccurredAt))
}

func withStatus(issue domain.Issue, status domain.Status) domain.Issue {
	issue.Status = status
	return issue
}
