package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faultline/internal/domain"
	"faultline/internal/storage"
	"faultline/pkg/platform/sentinel"
)

func keyFor(issue domain.Issue, partition string) storage.RowKey {
	return storage.RowKey{
		ProjectID: issue.ProjectID,
		Partition: partition,
		CreatedAt: issue.CreatedAt,
		IssueID:   issue.ID,
	}
}

func newIssue(projectID domain.ProjectID, offset time.Duration) domain.Issue {
	created := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC).Add(offset)
	return domain.Issue{
		ProjectID:  projectID,
		ID:         domain.NewIssueID(),
		Title:      "t",
		Status:     domain.StatusOpen,
		Priority:   domain.PriorityMedium,
		ReporterID: domain.NewUserID(),
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	store := New()
	projectID := domain.NewProjectID()
	issue := newIssue(projectID, 0)
	key := keyFor(issue, "")

	require.NoError(t, store.Upsert(context.Background(), storage.TableIssuesByProject, key, issue))
	require.NoError(t, store.Upsert(context.Background(), storage.TableIssuesByProject, key, issue))

	issues, _, err := store.Scan(context.Background(), storage.TableIssuesByProject, projectID, "", storage.Page{Size: 10})
	require.NoError(t, err)
	assert.Len(t, issues, 1)
}

func TestDeleteMissingRowIsNoop(t *testing.T) {
	store := New()
	issue := newIssue(domain.NewProjectID(), 0)

	// Deleting a row that never existed must not error; retried delete
	// fragments hit this path.
	assert.NoError(t, store.Delete(context.Background(), storage.TableIssuesByStatus, keyFor(issue, "open")))
}

func TestScanOrdersNewestFirst(t *testing.T) {
	store := New()
	projectID := domain.NewProjectID()
	older := newIssue(projectID, 0)
	newer := newIssue(projectID, time.Hour)
	require.NoError(t, store.Upsert(context.Background(), storage.TableIssuesByProject, keyFor(older, ""), older))
	require.NoError(t, store.Upsert(context.Background(), storage.TableIssuesByProject, keyFor(newer, ""), newer))

	issues, _, err := store.Scan(context.Background(), storage.TableIssuesByProject, projectID, "", storage.Page{Size: 10})
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, newer.ID, issues[0].ID)
	assert.Equal(t, older.ID, issues[1].ID)
}

func TestScanIsolatesPartitions(t *testing.T) {
	store := New()
	projectID := domain.NewProjectID()
	open := newIssue(projectID, 0)
	closed := newIssue(projectID, time.Minute)
	closed.Status = domain.StatusClosed
	require.NoError(t, store.Upsert(context.Background(), storage.TableIssuesByStatus, keyFor(open, "open"), open))
	require.NoError(t, store.Upsert(context.Background(), storage.TableIssuesByStatus, keyFor(closed, "closed"), closed))

	issues, _, err := store.Scan(context.Background(), storage.TableIssuesByStatus, projectID, "open", storage.Page{Size: 10})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, open.ID, issues[0].ID)
}

func TestScanPagination(t *testing.T) {
	store := New()
	projectID := domain.NewProjectID()
	for i := 0; i < 7; i++ {
		issue := newIssue(projectID, time.Duration(i)*time.Minute)
		require.NoError(t, store.Upsert(context.Background(), storage.TableIssuesByProject, keyFor(issue, ""), issue))
	}

	var total int
	page := storage.Page{Size: 3}
	var pages int
	for {
		issues, state, err := store.Scan(context.Background(), storage.TableIssuesByProject, projectID, "", page)
		require.NoError(t, err)
		total += len(issues)
		pages++
		if len(state) == 0 {
			break
		}
		page.State = state
	}
	assert.Equal(t, 7, total)
	assert.Equal(t, 3, pages)
}

func TestCommentsNewestFirst(t *testing.T) {
	store := New()
	projectID := domain.NewProjectID()
	issueID := domain.NewIssueID()
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		comment := domain.Comment{
			ProjectID: projectID,
			IssueID:   issueID,
			ID:        domain.NewCommentID(),
			AuthorID:  domain.NewUserID(),
			Content:   "c",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.AppendComment(context.Background(), comment))
	}

	comments, _, err := store.ListComments(context.Background(), projectID, issueID, storage.Page{Size: 10})
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.True(t, comments[0].CreatedAt.After(comments[1].CreatedAt))
	assert.True(t, comments[1].CreatedAt.After(comments[2].CreatedAt))
}

func TestHistoryOrderedByOccurrence(t *testing.T) {
	store := New()
	projectID := domain.NewProjectID()
	issueID := domain.NewIssueID()
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	for i := 2; i >= 0; i-- {
		event := domain.ChangeEvent{
			ProjectID:  projectID,
			IssueID:    issueID,
			ID:         domain.NewEventID(),
			Field:      domain.FieldStatus,
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.Append(context.Background(), event))
	}

	events, _, err := store.List(context.Background(), projectID, issueID, storage.Page{Size: 10})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.True(t, events[0].OccurredAt.Before(events[1].OccurredAt))
	assert.True(t, events[1].OccurredAt.Before(events[2].OccurredAt))
}

func TestFindUserNotFound(t *testing.T) {
	store := New()

	_, err := store.FindUser(context.Background(), domain.NewUserID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestFindProjectRoundTrip(t *testing.T) {
	store := New()
	project := domain.Project{ID: domain.NewProjectID(), Name: "p", CreatedAt: time.Now().UTC().Truncate(time.Millisecond)}
	require.NoError(t, store.SaveProject(context.Background(), project))

	got, err := store.FindProject(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, project, got)
}

func TestListUsersHonorsLimit(t *testing.T) {
	store := New()
	for i := 0; i < 5; i++ {
		user := domain.User{ID: domain.NewUserID(), Username: "u", Email: "e", Role: domain.RoleDeveloper, CreatedAt: time.Now()}
		require.NoError(t, store.SaveUser(context.Background(), user))
	}

	users, err := store.ListUsers(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}
