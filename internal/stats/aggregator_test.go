package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faultline/internal/domain"
	"faultline/internal/storage"
	"faultline/internal/storage/memory"
)

func storeWith(t *testing.T, projectID domain.ProjectID, issues []domain.Issue) *memory.Store {
	t.Helper()
	store := memory.New()
	for _, issue := range issues {
		key := storage.RowKey{ProjectID: projectID, CreatedAt: issue.CreatedAt, IssueID: issue.ID}
		require.NoError(t, store.Upsert(context.Background(), storage.TableIssuesByProject, key, issue))
	}
	return store
}

func issueWith(projectID domain.ProjectID, status domain.Status, priority domain.Priority, component string, offset time.Duration) domain.Issue {
	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC).Add(offset)
	return domain.Issue{
		ProjectID:  projectID,
		ID:         domain.NewIssueID(),
		Title:      "t",
		Status:     status,
		Priority:   priority,
		ReporterID: domain.NewUserID(),
		Component:  component,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestAggregateCountsByStatusPriorityComponent(t *testing.T) {
	projectID := domain.NewProjectID()
	var issues []domain.Issue
	for i := 0; i < 3; i++ {
		issues = append(issues, issueWith(projectID, domain.StatusOpen, domain.PriorityHigh, "api", time.Duration(i)*time.Minute))
	}
	for i := 0; i < 2; i++ {
		issues = append(issues, issueWith(projectID, domain.StatusClosed, domain.PriorityLow, "ui", time.Duration(10+i)*time.Minute))
	}
	agg := NewAggregator(storeWith(t, projectID, issues))

	stats, err := agg.Aggregate(context.Background(), projectID)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.ByStatus[domain.StatusOpen])
	assert.Equal(t, 2, stats.ByStatus[domain.StatusClosed])
	assert.Equal(t, 3, stats.ByPriority[domain.PriorityHigh])
	assert.Equal(t, 2, stats.ByPriority[domain.PriorityLow])
	assert.Equal(t, 3, stats.ByComponent["api"])
	assert.Equal(t, 2, stats.ByComponent["ui"])
}

func TestAggregateCountsEachIssueOnce(t *testing.T) {
	// Counting is driven by the primary projection only, so an issue is
	// never double-counted no matter how many secondary rows it owns.
	projectID := domain.NewProjectID()
	issue := issueWith(projectID, domain.StatusOpen, domain.PriorityHigh, "api", 0)
	store := storeWith(t, projectID, []domain.Issue{issue})

	// Plant the same issue in two secondary tables; the aggregate must
	// ignore them.
	statusKey := storage.RowKey{ProjectID: projectID, Partition: string(issue.Status), CreatedAt: issue.CreatedAt, IssueID: issue.ID}
	require.NoError(t, store.Upsert(context.Background(), storage.TableIssuesByStatus, statusKey, issue))
	priorityKey := storage.RowKey{ProjectID: projectID, Partition: string(issue.Priority), CreatedAt: issue.CreatedAt, IssueID: issue.ID}
	require.NoError(t, store.Upsert(context.Background(), storage.TableIssuesByPriority, priorityKey, issue))

	stats, err := NewAggregator(store).Aggregate(context.Background(), projectID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
}

func TestAggregateSkipsEmptyComponent(t *testing.T) {
	projectID := domain.NewProjectID()
	issues := []domain.Issue{
		issueWith(projectID, domain.StatusOpen, domain.PriorityMedium, "", 0),
		issueWith(projectID, domain.StatusOpen, domain.PriorityMedium, "infra", time.Minute),
	}

	stats, err := NewAggregator(storeWith(t, projectID, issues)).Aggregate(context.Background(), projectID)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByComponent["infra"])
	_, hasEmpty := stats.ByComponent[""]
	assert.False(t, hasEmpty)
}

func TestAggregateEmptyProject(t *testing.T) {
	projectID := domain.NewProjectID()

	stats, err := NewAggregator(memory.New()).Aggregate(context.Background(), projectID)
	require.NoError(t, err)

	assert.Zero(t, stats.Total)
	assert.Empty(t, stats.ByStatus)
	assert.Empty(t, stats.ByPriority)
	assert.Empty(t, stats.ByComponent)
}

func TestAggregatePagesThroughLargePartitions(t *testing.T) {
	projectID := domain.NewProjectID()
	var issues []domain.Issue
	for i := 0; i < 1203; i++ {
		issues = append(issues, issueWith(projectID, domain.StatusOpen, domain.PriorityLow, "bulk", time.Duration(i)*time.Second))
	}

	stats, err := NewAggregator(storeWith(t, projectID, issues)).Aggregate(context.Background(), projectID)
	require.NoError(t, err)
	assert.Equal(t, 1203, stats.Total)
}
