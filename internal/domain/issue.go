package domain

import (
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of an issue. The set is extensible; unknown
// values are rejected at the trust boundary, not deep in the write path.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
	StatusReopened   Status = "reopened"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed, StatusReopened:
		return s, nil
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// Priority is the urgency of an issue.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func ParsePriority(raw string) (Priority, error) {
	switch p := Priority(raw); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return p, nil
	}
	return "", fmt.Errorf("unknown priority %q", raw)
}

// Issue is the canonical in-memory issue record. Its authoritative copy lives
// in the by-project projection; every other projection stores a full
// denormalized copy of it, because the store cannot join.
//
// ProjectID, ID, ReporterID and CreatedAt are immutable after creation.
// AssigneeID may be nil (unassigned) and Component may be empty.
type Issue struct {
	ProjectID   ProjectID
	ID          IssueID
	Title       string
	Description string
	Status      Status
	Priority    Priority
	AssigneeID  UserID
	ReporterID  UserID
	Component   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SameIdentity reports whether two records describe the same issue row.
func (i Issue) SameIdentity(other Issue) bool {
	return i.ProjectID == other.ProjectID && i.ID == other.ID
}

// Validate enforces the create-time invariants.
func (i Issue) Validate() error {
	var errs []error
	if i.ProjectID.IsNil() {
		errs = append(errs, errors.New("project id is required"))
	}
	if i.ID.IsNil() {
		errs = append(errs, errors.New("issue id is required"))
	}
	if i.Title == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if i.ReporterID.IsNil() {
		errs = append(errs, errors.New("reporter id is required"))
	}
	if _, err := ParseStatus(string(i.Status)); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParsePriority(string(i.Priority)); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
