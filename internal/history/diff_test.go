package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faultline/internal/domain"
)

func sampleIssue() (domain.Issue, domain.UserID) {
	created := time.Date(2026, 1, 20, 8, 0, 0, 0, time.UTC)
	actor := domain.NewUserID()
	return domain.Issue{
		ProjectID:   domain.NewProjectID(),
		ID:          domain.NewIssueID(),
		Title:       "search index stale",
		Description: "results lag behind writes",
		Status:      domain.StatusOpen,
		Priority:    domain.PriorityMedium,
		AssigneeID:  domain.NewUserID(),
		ReporterID:  actor,
		Component:   "search",
		CreatedAt:   created,
		UpdatedAt:   created,
	}, actor
}

func eventByField(t *testing.T, events []domain.ChangeEvent, field string) domain.ChangeEvent {
	t.Helper()
	for _, e := range events {
		if e.Field == field {
			return e
		}
	}
	t.Fatalf("no event for field %s", field)
	return domain.ChangeEvent{}
}

func TestCreationEventsOnePerPopulatedField(t *testing.T) {
	issue, actor := sampleIssue()
	at := issue.CreatedAt

	events := CreationEvents(issue, actor, at)

	require.Len(t, events, 6)
	for _, e := range events {
		assert.Equal(t, issue.ProjectID, e.ProjectID)
		assert.Equal(t, issue.ID, e.IssueID)
		assert.Equal(t, actor, e.ActorID)
		assert.Equal(t, at, e.OccurredAt)
		assert.Empty(t, e.OldValue, "creation events start from nothing")
		assert.NotEmpty(t, e.NewValue)
		assert.False(t, e.ID.IsNil())
	}
	assert.Equal(t, "search index stale", eventByField(t, events, domain.FieldTitle).NewValue)
	assert.Equal(t, string(domain.StatusOpen), eventByField(t, events, domain.FieldStatus).NewValue)
}

func TestCreationEventsSkipEmptyFields(t *testing.T) {
	issue, actor := sampleIssue()
	issue.Description = ""
	issue.AssigneeID = domain.UserID{}
	issue.Component = ""

	events := CreationEvents(issue, actor, issue.CreatedAt)

	require.Len(t, events, 3)
	fields := make([]string, 0, len(events))
	for _, e := range events {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{domain.FieldTitle, domain.FieldStatus, domain.FieldPriority}, fields)
}

func TestUpdateEventsOnlyChangedFields(t *testing.T) {
	old, actor := sampleIssue()
	updated := old
	updated.Status = domain.StatusInProgress
	updated.Priority = domain.PriorityHigh
	at := old.CreatedAt.Add(time.Hour)

	events := UpdateEvents(old, updated, actor, at)

	require.Len(t, events, 2)
	statusEvent := eventByField(t, events, domain.FieldStatus)
	assert.Equal(t, string(domain.StatusOpen), statusEvent.OldValue)
	assert.Equal(t, string(domain.StatusInProgress), statusEvent.NewValue)

	priorityEvent := eventByField(t, events, domain.FieldPriority)
	assert.Equal(t, string(domain.PriorityMedium), priorityEvent.OldValue)
	assert.Equal(t, string(domain.PriorityHigh), priorityEvent.NewValue)
}

func TestUpdateEventsNoChangesNoEvents(t *testing.T) {
	old, actor := sampleIssue()

	events := UpdateEvents(old, old, actor, old.CreatedAt)

	assert.Empty(t, events)
}

func TestUpdateEventsRenderClearedAssigneeAsEmpty(t *testing.T) {
	old, actor := sampleIssue()
	updated := old
	updated.AssigneeID = domain.UserID{}

	events := UpdateEvents(old, updated, actor, old.CreatedAt.Add(time.Minute))

	require.Len(t, events, 1)
	assert.Equal(t, domain.FieldAssignee, events[0].Field)
	assert.Equal(t, old.AssigneeID.String(), events[0].OldValue)
	assert.Empty(t, events[0].NewValue)
}

func TestDeletionEventShape(t *testing.T) {
	issue, actor := sampleIssue()
	issue.Status = domain.StatusClosed
	at := issue.CreatedAt.Add(48 * time.Hour)

	event := DeletionEvent(issue, actor, at)

	assert.Equal(t, domain.FieldIssue, event.Field)
	assert.Equal(t, string(domain.StatusClosed), event.OldValue)
	assert.Empty(t, event.NewValue)
	assert.Equal(t, at, event.OccurredAt)
}
