package storage

import (
	"context"
	"time"

	"faultline/internal/domain"
)

// Projection table names. They match the Cassandra schema; the memory store
// reuses them as map keys so both implementations agree on addressing.
const (
	TableIssuesByProject   = "issues_by_project"
	TableIssuesByStatus    = "issues_by_status"
	TableIssuesByAssignee  = "issues_by_assignee"
	TableIssuesByPriority  = "issues_by_priority"
	TableIssuesByComponent = "issues_by_component"
)

// RowKey addresses one projection row. Partition holds the secondary dimension
// value (status, priority, component, or assignee id) and is empty for the
// primary by-project table. Status is populated only for the by-assignee
// table, whose clustering key includes it. CreatedAt participates in every
// clustering key and is immutable, which is what makes reapplying a plan
// fragment land on the same row.
type RowKey struct {
	ProjectID domain.ProjectID
	Partition string
	Status    domain.Status
	CreatedAt time.Time
	IssueID   domain.IssueID
}

// Page carries pagination through partition scans. State is an opaque token
// returned by the previous scan; nil starts from the beginning.
type Page struct {
	Size  int
	State []byte
}

// IssueProjectionStore is the row-store port the fan-out writer drives. The
// store offers per-table upsert-by-key, delete-by-key and partition scans and
// nothing else: no cross-table transactions, no secondary indexes. Upserts are
// full-row writes, so reapplying the same write is idempotent.
type IssueProjectionStore interface {
	Upsert(ctx context.Context, table string, key RowKey, issue domain.Issue) error
	Delete(ctx context.Context, table string, key RowKey) error
	Scan(ctx context.Context, table string, projectID domain.ProjectID, partition string, page Page) ([]domain.Issue, []byte, error)
}

// HistoryStore persists the append-only change log. Append never updates an
// existing row; List returns events for one issue ordered by occurrence time.
type HistoryStore interface {
	Append(ctx context.Context, event domain.ChangeEvent) error
	List(ctx context.Context, projectID domain.ProjectID, issueID domain.IssueID, page Page) ([]domain.ChangeEvent, []byte, error)
}

// CommentStore persists issue comments within their (project, issue)
// partition. Method names stay distinct from HistoryStore so one session type
// can implement both ports.
type CommentStore interface {
	AppendComment(ctx context.Context, comment domain.Comment) error
	ListComments(ctx context.Context, projectID domain.ProjectID, issueID domain.IssueID, page Page) ([]domain.Comment, []byte, error)
}

// UserStore and ProjectStore back the directory. Find methods return
// sentinel.ErrNotFound (wrapped) when the entity is absent.
type UserStore interface {
	SaveUser(ctx context.Context, user domain.User) error
	FindUser(ctx context.Context, id domain.UserID) (domain.User, error)
	ListUsers(ctx context.Context, limit int) ([]domain.User, error)
}

type ProjectStore interface {
	SaveProject(ctx context.Context, project domain.Project) error
	FindProject(ctx context.Context, id domain.ProjectID) (domain.Project, error)
	ListProjects(ctx context.Context, limit int) ([]domain.Project, error)
}
