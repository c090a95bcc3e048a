// Package memory is an in-memory implementation of the storage ports for
// tests and local development. It mirrors the Cassandra table shapes closely
// enough to exercise partition moves: rows are bucketed per partition and
// addressed by their clustering columns.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"faultline/internal/domain"
	"faultline/internal/storage"
	"faultline/pkg/platform/sentinel"
)

type partitionKey struct {
	projectID domain.ProjectID
	partition string
}

type rowID struct {
	status    domain.Status
	createdAt int64
	issueID   domain.IssueID
}

func rowIDFor(key storage.RowKey) rowID {
	return rowID{status: key.Status, createdAt: key.CreatedAt.UnixNano(), issueID: key.IssueID}
}

type historyKey struct {
	projectID domain.ProjectID
	issueID   domain.IssueID
}

// Store implements every storage port in memory. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	tables   map[string]map[partitionKey]map[rowID]domain.Issue
	history  map[historyKey][]domain.ChangeEvent
	comments map[historyKey][]domain.Comment
	users    map[domain.UserID]domain.User
	projects map[domain.ProjectID]domain.Project
}

func New() *Store {
	return &Store{
		tables:   make(map[string]map[partitionKey]map[rowID]domain.Issue),
		history:  make(map[historyKey][]domain.ChangeEvent),
		comments: make(map[historyKey][]domain.Comment),
		users:    make(map[domain.UserID]domain.User),
		projects: make(map[domain.ProjectID]domain.Project),
	}
}

func (s *Store) partition(table string, key partitionKey) map[rowID]domain.Issue {
	rows, ok := s.tables[table]
	if !ok {
		rows = make(map[partitionKey]map[rowID]domain.Issue)
		s.tables[table] = rows
	}
	part, ok := rows[key]
	if !ok {
		part = make(map[rowID]domain.Issue)
		rows[key] = part
	}
	return part
}

func (s *Store) Upsert(_ context.Context, table string, key storage.RowKey, issue domain.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	part := s.partition(table, partitionKey{projectID: key.ProjectID, partition: key.Partition})
	part[rowIDFor(key)] = issue
	return nil
}

func (s *Store) Delete(_ context.Context, table string, key storage.RowKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	part := s.partition(table, partitionKey{projectID: key.ProjectID, partition: key.Partition})
	delete(part, rowIDFor(key))
	return nil
}

func (s *Store) Scan(_ context.Context, table string, projectID domain.ProjectID, partition string, page storage.Page) ([]domain.Issue, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	part := s.tables[table][partitionKey{projectID: projectID, partition: partition}]
	issues := make([]domain.Issue, 0, len(part))
	for _, issue := range part {
		issues = append(issues, issue)
	}
	// Clustering order: created_at DESC, issue_id ASC.
	sort.Slice(issues, func(i, j int) bool {
		if !issues[i].CreatedAt.Equal(issues[j].CreatedAt) {
			return issues[i].CreatedAt.After(issues[j].CreatedAt)
		}
		return issues[i].ID.String() < issues[j].ID.String()
	})

	return paginate(issues, page)
}

// paginate slices results by an offset token, the memory analogue of a gocql
// page state.
func paginate[T any](items []T, page storage.Page) ([]T, []byte, error) {
	offset := 0
	if len(page.State) > 0 {
		parsed, err := strconv.Atoi(string(page.State))
		if err != nil {
			return nil, nil, fmt.Errorf("bad page token: %w", err)
		}
		offset = parsed
	}
	if offset >= len(items) {
		return nil, nil, nil
	}
	items = items[offset:]
	if page.Size > 0 && len(items) > page.Size {
		next := []byte(strconv.Itoa(offset + page.Size))
		return items[:page.Size], next, nil
	}
	return items, nil, nil
}

func (s *Store) Append(_ context.Context, event domain.ChangeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := historyKey{projectID: event.ProjectID, issueID: event.IssueID}
	s.history[key] = append(s.history[key], event)
	return nil
}

func (s *Store) List(_ context.Context, projectID domain.ProjectID, issueID domain.IssueID, page storage.Page) ([]domain.ChangeEvent, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.history[historyKey{projectID: projectID, issueID: issueID}]
	events := make([]domain.ChangeEvent, len(stored))
	copy(events, stored)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.Before(events[j].OccurredAt)
	})
	return paginate(events, page)
}

func (s *Store) AppendComment(_ context.Context, comment domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := historyKey{projectID: comment.ProjectID, issueID: comment.IssueID}
	s.comments[key] = append(s.comments[key], comment)
	return nil
}

func (s *Store) ListComments(_ context.Context, projectID domain.ProjectID, issueID domain.IssueID, page storage.Page) ([]domain.Comment, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.comments[historyKey{projectID: projectID, issueID: issueID}]
	comments := make([]domain.Comment, len(stored))
	copy(comments, stored)
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return paginate(comments, page)
}

func (s *Store) SaveUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *Store) FindUser(_ context.Context, id domain.UserID) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user %s: %w", id, sentinel.ErrNotFound)
	}
	return user, nil
}

func (s *Store) ListUsers(_ context.Context, limit int) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sortByCreation(users, func(u domain.User) time.Time { return u.CreatedAt })
	return truncate(users, limit), nil
}

func (s *Store) SaveProject(_ context.Context, project domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[project.ID] = project
	return nil
}

func (s *Store) FindProject(_ context.Context, id domain.ProjectID) (domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	project, ok := s.projects[id]
	if !ok {
		return domain.Project{}, fmt.Errorf("project %s: %w", id, sentinel.ErrNotFound)
	}
	return project, nil
}

func (s *Store) ListProjects(_ context.Context, limit int) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	projects := make([]domain.Project, 0, len(s.projects))
	for _, p := range s.projects {
		projects = append(projects, p)
	}
	sortByCreation(projects, func(p domain.Project) time.Time { return p.CreatedAt })
	return truncate(projects, limit), nil
}

func sortByCreation[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).Before(createdAt(items[j]))
	})
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
