package domain

import "time"

// Comment is free text attached to an issue. Comments live in their own
// partition keyed by (project, issue) and never participate in fan-out.
type Comment struct {
	ProjectID ProjectID
	IssueID   IssueID
	ID        CommentID
	AuthorID  UserID
	Content   string
	CreatedAt time.Time
}
