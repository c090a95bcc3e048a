package comments

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faultline/internal/domain"
	"faultline/internal/storage"
	"faultline/internal/storage/memory"
	"faultline/pkg/platform/sentinel"
)

func setup(t *testing.T) (*Service, *memory.Store, domain.User) {
	t.Helper()
	store := memory.New()
	author := domain.User{ID: domain.NewUserID(), Username: "dev_user1", Email: "dev1@company.com", Role: domain.RoleDeveloper, CreatedAt: time.Now()}
	require.NoError(t, store.SaveUser(context.Background(), author))
	return NewService(store, store), store, author
}

func TestAppendAndList(t *testing.T) {
	svc, _, author := setup(t)
	projectID := domain.NewProjectID()
	issueID := domain.NewIssueID()

	first, err := svc.Append(context.Background(), projectID, issueID, author.ID, "can reproduce on staging")
	require.NoError(t, err)
	assert.False(t, first.ID.IsNil())
	assert.Equal(t, author.ID, first.AuthorID)

	second, err := svc.Append(context.Background(), projectID, issueID, author.ID, "fixed in next release")
	require.NoError(t, err)

	comments, _, err := svc.List(context.Background(), projectID, issueID, storage.Page{Size: 10})
	require.NoError(t, err)
	require.Len(t, comments, 2)
	ids := []domain.CommentID{comments[0].ID, comments[1].ID}
	assert.ElementsMatch(t, []domain.CommentID{first.ID, second.ID}, ids)
}

func TestAppendRejectsEmptyContent(t *testing.T) {
	svc, _, author := setup(t)

	_, err := svc.Append(context.Background(), domain.NewProjectID(), domain.NewIssueID(), author.ID, "")
	assert.ErrorIs(t, err, sentinel.ErrInvalidArgument)
}

func TestAppendRejectsOversizedContent(t *testing.T) {
	svc, _, author := setup(t)

	_, err := svc.Append(context.Background(), domain.NewProjectID(), domain.NewIssueID(), author.ID, strings.Repeat("x", 1001))
	assert.ErrorIs(t, err, sentinel.ErrInvalidArgument)
}

func TestAppendRejectsUnknownAuthor(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.Append(context.Background(), domain.NewProjectID(), domain.NewIssueID(), domain.NewUserID(), "hello")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
