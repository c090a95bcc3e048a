package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Typed UUID wrappers. Project, issue, user, comment and event identifiers are
// all UUIDs on the wire; distinct types keep them from being swapped at compile
// time.
type (
	ProjectID uuid.UUID
	IssueID   uuid.UUID
	UserID    uuid.UUID
	CommentID uuid.UUID
	EventID   uuid.UUID
)

var errInvalidID = errors.New("id must be a valid non-nil UUID")

func parseUUID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", errInvalidID, err)
	}
	if id == uuid.Nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}

func ParseProjectID(raw string) (ProjectID, error) {
	id, err := parseUUID(raw)
	return ProjectID(id), err
}

func ParseIssueID(raw string) (IssueID, error) {
	id, err := parseUUID(raw)
	return IssueID(id), err
}

func ParseUserID(raw string) (UserID, error) {
	id, err := parseUUID(raw)
	return UserID(id), err
}

func ParseCommentID(raw string) (CommentID, error) {
	id, err := parseUUID(raw)
	return CommentID(id), err
}

func NewProjectID() ProjectID { return ProjectID(uuid.New()) }
func NewIssueID() IssueID     { return IssueID(uuid.New()) }
func NewUserID() UserID       { return UserID(uuid.New()) }
func NewCommentID() CommentID { return CommentID(uuid.New()) }
func NewEventID() EventID     { return EventID(uuid.New()) }

func (id ProjectID) String() string { return uuid.UUID(id).String() }
func (id IssueID) String() string   { return uuid.UUID(id).String() }
func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id CommentID) String() string { return uuid.UUID(id).String() }
func (id EventID) String() string   { return uuid.UUID(id).String() }

func (id ProjectID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id IssueID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CommentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
