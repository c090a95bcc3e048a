package cassandra

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"faultline/internal/domain"
	"faultline/internal/storage"
	"faultline/pkg/platform/sentinel"
)

// Store implements the storage ports over one gocql session. The session is
// safe for concurrent use and is the only state shared across requests.
type Store struct {
	session *gocql.Session
}

func NewStore(session *gocql.Session) *Store {
	return &Store{session: session}
}

func cql[T ~[16]byte](id T) gocql.UUID { return gocql.UUID(id) }

const issueColumnList = "project_id, created_at, issue_id, title, description, status, priority, assignee_id, reporter_id, component, updated_at"

func (s *Store) Upsert(ctx context.Context, table string, _ storage.RowKey, issue domain.Issue) error {
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", table, issueColumnList)
	err := s.session.Query(stmt,
		cql(issue.ProjectID),
		issue.CreatedAt,
		cql(issue.ID),
		issue.Title,
		issue.Description,
		string(issue.Status),
		string(issue.Priority),
		cql(issue.AssigneeID),
		cql(issue.ReporterID),
		issue.Component,
		issue.UpdatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, table string, key storage.RowKey) error {
	stmt, args, err := deleteQuery(table, key)
	if err != nil {
		return err
	}
	if err := s.session.Query(stmt, args...).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}

// deleteQuery names the full primary key per table. The by-assignee table
// clusters by status, so its delete must carry the status the row was written
// under; the plan key preserves it.
func deleteQuery(table string, key storage.RowKey) (string, []any, error) {
	switch table {
	case storage.TableIssuesByProject:
		return "DELETE FROM issues_by_project WHERE project_id = ? AND created_at = ? AND issue_id = ?",
			[]any{cql(key.ProjectID), key.CreatedAt, cql(key.IssueID)}, nil
	case storage.TableIssuesByStatus:
		return "DELETE FROM issues_by_status WHERE project_id = ? AND status = ? AND created_at = ? AND issue_id = ?",
			[]any{cql(key.ProjectID), key.Partition, key.CreatedAt, cql(key.IssueID)}, nil
	case storage.TableIssuesByAssignee:
		assignee, err := uuid.Parse(key.Partition)
		if err != nil {
			return "", nil, fmt.Errorf("assignee partition %q: %w", key.Partition, err)
		}
		return "DELETE FROM issues_by_assignee WHERE project_id = ? AND assignee_id = ? AND status = ? AND created_at = ? AND issue_id = ?",
			[]any{cql(key.ProjectID), gocql.UUID(assignee), string(key.Status), key.CreatedAt, cql(key.IssueID)}, nil
	case storage.TableIssuesByPriority:
		return "DELETE FROM issues_by_priority WHERE project_id = ? AND priority = ? AND created_at = ? AND issue_id = ?",
			[]any{cql(key.ProjectID), key.Partition, key.CreatedAt, cql(key.IssueID)}, nil
	case storage.TableIssuesByComponent:
		return "DELETE FROM issues_by_component WHERE project_id = ? AND component = ? AND created_at = ? AND issue_id = ?",
			[]any{cql(key.ProjectID), key.Partition, key.CreatedAt, cql(key.IssueID)}, nil
	}
	return "", nil, fmt.Errorf("unknown projection table %q", table)
}

func (s *Store) Scan(ctx context.Context, table string, projectID domain.ProjectID, partition string, page storage.Page) ([]domain.Issue, []byte, error) {
	stmt, args, err := scanQuery(table, projectID, partition)
	if err != nil {
		return nil, nil, err
	}

	query := s.session.Query(stmt, args...).WithContext(ctx)
	if page.Size > 0 {
		query = query.PageSize(page.Size)
	}
	if len(page.State) > 0 {
		query = query.PageState(page.State)
	}

	iter := query.Iter()
	var issues []domain.Issue
	for {
		issue, ok, scanErr := scanIssue(iter)
		if scanErr != nil {
			_ = iter.Close()
			return nil, nil, scanErr
		}
		if !ok {
			break
		}
		issues = append(issues, issue)
	}
	state := iter.PageState()
	if err := iter.Close(); err != nil {
		return nil, nil, fmt.Errorf("scan %s: %w", table, err)
	}
	return issues, state, nil
}

func scanQuery(table string, projectID domain.ProjectID, partition string) (string, []any, error) {
	base := fmt.Sprintf("SELECT %s FROM %s WHERE project_id = ?", issueColumnList, table)
	switch table {
	case storage.TableIssuesByProject:
		return base, []any{cql(projectID)}, nil
	case storage.TableIssuesByStatus:
		return base + " AND status = ?", []any{cql(projectID), partition}, nil
	case storage.TableIssuesByAssignee:
		assignee, err := uuid.Parse(partition)
		if err != nil {
			return "", nil, fmt.Errorf("assignee partition %q: %w", partition, err)
		}
		return base + " AND assignee_id = ?", []any{cql(projectID), gocql.UUID(assignee)}, nil
	case storage.TableIssuesByPriority:
		return base + " AND priority = ?", []any{cql(projectID), partition}, nil
	case storage.TableIssuesByComponent:
		return base + " AND component = ?", []any{cql(projectID), partition}, nil
	}
	return "", nil, fmt.Errorf("unknown projection table %q", table)
}

func scanIssue(iter *gocql.Iter) (domain.Issue, bool, error) {
	var (
		issue                            domain.Issue
		projectID, issueID               gocql.UUID
		assigneeID, reporterID           gocql.UUID
		status, priority                 string
	)
	ok := iter.Scan(
		&projectID,
		&issue.CreatedAt,
		&issueID,
		&issue.Title,
		&issue.Description,
		&status,
		&priority,
		&assigneeID,
		&reporterID,
		&issue.Component,
		&issue.UpdatedAt,
	)
	if !ok {
		return domain.Issue{}, false, nil
	}
	issue.ProjectID = domain.ProjectID(projectID)
	issue.ID = domain.IssueID(issueID)
	issue.AssigneeID = domain.UserID(assigneeID)
	issue.ReporterID = domain.UserID(reporterID)
	issue.Status = domain.Status(status)
	issue.Priority = domain.Priority(priority)
	return issue, true, nil
}

func (s *Store) Append(ctx context.Context, event domain.ChangeEvent) error {
	err := s.session.Query(
		`INSERT INTO issue_history (project_id, issue_id, occurred_at, event_id, field_changed, old_value, new_value, changed_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		cql(event.ProjectID),
		cql(event.IssueID),
		event.OccurredAt,
		cql(event.ID),
		event.Field,
		event.OldValue,
		event.NewValue,
		cql(event.ActorID),
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("append history event: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, projectID domain.ProjectID, issueID domain.IssueID, page storage.Page) ([]domain.ChangeEvent, []byte, error) {
	query := s.session.Query(
		`SELECT project_id, issue_id, occurred_at, event_id, field_changed, old_value, new_value, changed_by
		 FROM issue_history WHERE project_id = ? AND issue_id = ?`,
		cql(projectID), cql(issueID),
	).WithContext(ctx)
	if page.Size > 0 {
		query = query.PageSize(page.Size)
	}
	if len(page.State) > 0 {
		query = query.PageState(page.State)
	}

	iter := query.Iter()
	var events []domain.ChangeEvent
	for {
		var (
			ev                 domain.ChangeEvent
			pID, iID, eID, actor gocql.UUID
		)
		if !iter.Scan(&pID, &iID, &ev.OccurredAt, &eID, &ev.Field, &ev.OldValue, &ev.NewValue, &actor) {
			break
		}
		ev.ProjectID = domain.ProjectID(pID)
		ev.IssueID = domain.IssueID(iID)
		ev.ID = domain.EventID(eID)
		ev.ActorID = domain.UserID(actor)
		events = append(events, ev)
	}
	state := iter.PageState()
	if err := iter.Close(); err != nil {
		return nil, nil, fmt.Errorf("list history: %w", err)
	}
	return events, state, nil
}

func (s *Store) AppendComment(ctx context.Context, comment domain.Comment) error {
	err := s.session.Query(
		`INSERT INTO issue_comments (project_id, issue_id, created_at, comment_id, user_id, content)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		cql(comment.ProjectID),
		cql(comment.IssueID),
		comment.CreatedAt,
		cql(comment.ID),
		cql(comment.AuthorID),
		comment.Content,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("append comment: %w", err)
	}
	return nil
}

func (s *Store) ListComments(ctx context.Context, projectID domain.ProjectID, issueID domain.IssueID, page storage.Page) ([]domain.Comment, []byte, error) {
	query := s.session.Query(
		`SELECT project_id, issue_id, created_at, comment_id, user_id, content
		 FROM issue_comments WHERE project_id = ? AND issue_id = ?`,
		cql(projectID), cql(issueID),
	).WithContext(ctx)
	if page.Size > 0 {
		query = query.PageSize(page.Size)
	}
	if len(page.State) > 0 {
		query = query.PageState(page.State)
	}

	iter := query.Iter()
	var comments []domain.Comment
	for {
		var (
			c                   domain.Comment
			pID, iID, cID, uID  gocql.UUID
		)
		if !iter.Scan(&pID, &iID, &c.CreatedAt, &cID, &uID, &c.Content) {
			break
		}
		c.ProjectID = domain.ProjectID(pID)
		c.IssueID = domain.IssueID(iID)
		c.ID = domain.CommentID(cID)
		c.AuthorID = domain.UserID(uID)
		comments = append(comments, c)
	}
	state := iter.PageState()
	if err := iter.Close(); err != nil {
		return nil, nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, state, nil
}

func (s *Store) SaveUser(ctx context.Context, user domain.User) error {
	err := s.session.Query(
		`INSERT INTO users (user_id, username, email, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		cql(user.ID), user.Username, user.Email, string(user.Role), user.CreatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Store) FindUser(ctx context.Context, id domain.UserID) (domain.User, error) {
	var (
		user domain.User
		uID  gocql.UUID
		role string
	)
	err := s.session.Query(
		`SELECT user_id, username, email, role, created_at FROM users WHERE user_id = ?`,
		cql(id),
	).WithContext(ctx).Scan(&uID, &user.Username, &user.Email, &role, &user.CreatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return domain.User{}, fmt.Errorf("user %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}
	user.ID = domain.UserID(uID)
	user.Role = domain.Role(role)
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context, limit int) ([]domain.User, error) {
	query := s.session.Query(`SELECT user_id, username, email, role, created_at FROM users`).WithContext(ctx)
	if limit > 0 {
		query = query.PageSize(limit)
	}
	iter := query.Iter()
	var users []domain.User
	for {
		var (
			user domain.User
			uID  gocql.UUID
			role string
		)
		if !iter.Scan(&uID, &user.Username, &user.Email, &role, &user.CreatedAt) {
			break
		}
		user.ID = domain.UserID(uID)
		user.Role = domain.Role(role)
		users = append(users, user)
		if limit > 0 && len(users) >= limit {
			break
		}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Store) SaveProject(ctx context.Context, project domain.Project) error {
	err := s.session.Query(
		`INSERT INTO projects (project_id, name, description, created_at) VALUES (?, ?, ?, ?)`,
		cql(project.ID), project.Name, project.Description, project.CreatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

func (s *Store) FindProject(ctx context.Context, id domain.ProjectID) (domain.Project, error) {
	var (
		project domain.Project
		pID     gocql.UUID
	)
	err := s.session.Query(
		`SELECT project_id, name, description, created_at FROM projects WHERE project_id = ?`,
		cql(id),
	).WithContext(ctx).Scan(&pID, &project.Name, &project.Description, &project.CreatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return domain.Project{}, fmt.Errorf("project %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return domain.Project{}, fmt.Errorf("find project: %w", err)
	}
	project.ID = domain.ProjectID(pID)
	return project, nil
}

func (s *Store) ListProjects(ctx context.Context, limit int) ([]domain.Project, error) {
	query := s.session.Query(`SELECT project_id, name, description, created_at FROM projects`).WithContext(ctx)
	if limit > 0 {
		query = query.PageSize(limit)
	}
	iter := query.Iter()
	var projects []domain.Project
	for {
		var (
			project domain.Project
			pID     gocql.UUID
		)
		if !iter.Scan(&pID, &project.Name, &project.Description, &project.CreatedAt) {
			break
		}
		project.ID = domain.ProjectID(pID)
		projects = append(projects, project)
		if limit > 0 && len(projects) >= limit {
			break
		}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// TruncateAll clears every table without dropping schema. Used by the seeder's
// reset mode only; nothing in the serving path calls it.
func (s *Store) TruncateAll(ctx context.Context) error {
	for _, table := range allTables {
		if err := s.session.Query("TRUNCATE " + table).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}
