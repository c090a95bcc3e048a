package history

import (
	"time"

	"faultline/internal/domain"
)

func renderAssignee(id domain.UserID) string {
	if id.IsNil() {
		return ""
	}
	return id.String()
}

// CreationEvents produces one event per populated field of a freshly created
// issue, all stamped with the creation time so they share the issue's first
// history moment.
func CreationEvents(issue domain.Issue, actor domain.UserID, at time.Time) []domain.ChangeEvent {
	fields := []struct {
		name  string
		value string
	}{
		{domain.FieldTitle, issue.Title},
		{domain.FieldDescription, issue.Description},
		{domain.FieldStatus, string(issue.Status)},
		{domain.FieldPriority, string(issue.Priority)},
		{domain.FieldAssignee, renderAssignee(issue.AssigneeID)},
		{domain.FieldComponent, issue.Component},
	}

	var events []domain.ChangeEvent
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		events = append(events, event(issue, actor, at, f.name, "", f.value))
	}
	return events
}

// UpdateEvents produces one event per changed field, never a compound event.
// Unchanged fields are silent.
func UpdateEvents(old, new domain.Issue, actor domain.UserID, at time.Time) []domain.ChangeEvent {
	type change struct {
		field    string
		old, new string
	}
	candidates := []change{
		{domain.FieldTitle, old.Title, new.Title},
		{domain.FieldDescription, old.Description, new.Description},
		{domain.FieldStatus, string(old.Status), string(new.Status)},
		{domain.FieldPriority, string(old.Priority), string(new.Priority)},
		{domain.FieldAssignee, renderAssignee(old.AssigneeID), renderAssignee(new.AssigneeID)},
		{domain.FieldComponent, old.Component, new.Component},
	}

	var events []domain.ChangeEvent
	for _, c := range candidates {
		if c.old == c.new {
			continue
		}
		events = append(events, event(new, actor, at, c.field, c.old, c.new))
	}
	return events
}

// DeletionEvent is the terminal entry of an issue's history: the log outlives
// the projections it describes.
func DeletionEvent(issue domain.Issue, actor domain.UserID, at time.Time) domain.ChangeEvent {
	return event(issue, actor, at, domain.FieldIssue, string(issue.Status), "")
}

func event(issue domain.Issue, actor domain.UserID, at time.Time, field, oldValue, newValue string) domain.ChangeEvent {
	return domain.ChangeEvent{
		ProjectID:  issue.ProjectID,
		IssueID:    issue.ID,
		ID:         domain.NewEventID(),
		Field:      field,
		OldValue:   oldValue,
		NewValue:   newValue,
		ActorID:    actor,
		OccurredAt: at,
	}
}
