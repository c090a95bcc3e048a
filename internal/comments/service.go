// Package comments handles free-text discussion on issues. Comments live in
// one partition per issue and never participate in projection fan-out.
package comments

import (
	"context"
	"fmt"
	"time"

	"faultline/internal/domain"
	"faultline/internal/storage"
	"faultline/pkg/platform/sentinel"
)

const maxContentLength = 1000

type Service struct {
	store storage.CommentStore
	users storage.UserStore
	now   func() time.Time
}

func NewService(store storage.CommentStore, users storage.UserStore) *Service {
	return &Service{
		store: store,
		users: users,
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Append validates and stores one comment.
func (s *Service) Append(ctx context.Context, projectID domain.ProjectID, issueID domain.IssueID, authorID domain.UserID, content string) (domain.Comment, error) {
	if content == "" {
		return domain.Comment{}, fmt.Errorf("comment content is required: %w", sentinel.ErrInvalidArgument)
	}
	if len(content) > maxContentLength {
		return domain.Comment{}, fmt.Errorf("comment content exceeds %d characters: %w", maxContentLength, sentinel.ErrInvalidArgument)
	}
	if _, err := s.users.FindUser(ctx, authorID); err != nil {
		return domain.Comment{}, err
	}

	comment := domain.Comment{
		ProjectID: projectID,
		IssueID:   issueID,
		ID:        domain.NewCommentID(),
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.store.AppendComment(ctx, comment); err != nil {
		return domain.Comment{}, err
	}
	return comment, nil
}

// List returns an issue's comments, newest first.
func (s *Service) List(ctx context.Context, projectID domain.ProjectID, issueID domain.IssueID, page storage.Page) ([]domain.Comment, []byte, error) {
	return s.store.ListComments(ctx, projectID, issueID, page)
}
