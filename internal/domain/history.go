package domain

import "time"

// Field names recorded in change events. They match the issue columns so a
// consumer can correlate events with projection contents.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldPriority    = "priority"
	FieldAssignee    = "assignee_id"
	FieldComponent   = "component"

	// FieldIssue marks lifecycle events: creation never uses it, deletion
	// appends exactly one terminal event with this field.
	FieldIssue = "issue"
)

// ChangeEvent is one immutable entry in an issue's history log. Events are
// never mutated or deleted once written and are ordered by OccurredAt within
// an issue's partition. Old and new values are string-rendered; an unset value
// renders as the empty string.
type ChangeEvent struct {
	ProjectID  ProjectID
	IssueID    IssueID
	ID         EventID
	Field      string
	OldValue   string
	NewValue   string
	ActorID    UserID
	OccurredAt time.Time
}
