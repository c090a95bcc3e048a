package cassandra

import "fmt"

// Every projection table stores a complete denormalized issue snapshot: the
// store cannot join, so a secondary read must be self-sufficient. Clustering
// orders newest-first to match the list endpoints.
const issueColumns = `
	project_id uuid,
	created_at timestamp,
	issue_id uuid,
	title text,
	description text,
	status text,
	priority text,
	assignee_id uuid,
	reporter_id uuid,
	component text,
	updated_at timestamp,
`

var tableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		project_id uuid,
		name text,
		description text,
		created_at timestamp,
		PRIMARY KEY (project_id)
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		user_id uuid,
		username text,
		email text,
		role text,
		created_at timestamp,
		PRIMARY KEY (user_id)
	)`,

	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS issues_by_project (%s
		PRIMARY KEY (project_id, created_at, issue_id)
	) WITH CLUSTERING ORDER BY (created_at DESC, issue_id ASC)`, issueColumns),

	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS issues_by_status (%s
		PRIMARY KEY ((project_id, status), created_at, issue_id)
	) WITH CLUSTERING ORDER BY (created_at DESC, issue_id ASC)`, issueColumns),

	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS issues_by_assignee (%s
		PRIMARY KEY ((project_id, assignee_id), status, created_at, issue_id)
	) WITH CLUSTERING ORDER BY (status ASC, created_at DESC, issue_id ASC)`, issueColumns),

	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS issues_by_priority (%s
		PRIMARY KEY ((project_id, priority), created_at, issue_id)
	) WITH CLUSTERING ORDER BY (created_at DESC, issue_id ASC)`, issueColumns),

	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS issues_by_component (%s
		PRIMARY KEY ((project_id, component), created_at, issue_id)
	) WITH CLUSTERING ORDER BY (created_at DESC, issue_id ASC)`, issueColumns),

	`CREATE TABLE IF NOT EXISTS issue_comments (
		project_id uuid,
		issue_id uuid,
		created_at timestamp,
		comment_id uuid,
		user_id uuid,
		content text,
		PRIMARY KEY ((project_id, issue_id), created_at, comment_id)
	) WITH CLUSTERING ORDER BY (created_at DESC, comment_id ASC)`,

	// History clusters oldest-first so a partition read yields the
	// non-decreasing timestamp order the log guarantees.
	`CREATE TABLE IF NOT EXISTS issue_history (
		project_id uuid,
		issue_id uuid,
		occurred_at timestamp,
		event_id uuid,
		field_changed text,
		old_value text,
		new_value text,
		changed_by uuid,
		PRIMARY KEY ((project_id, issue_id), occurred_at, event_id)
	) WITH CLUSTERING ORDER BY (occurred_at ASC, event_id ASC)`,
}

// allTables lists every table for truncation, in no particular order.
var allTables = []string{
	"projects",
	"users",
	"issues_by_project",
	"issues_by_status",
	"issues_by_assignee",
	"issues_by_priority",
	"issues_by_component",
	"issue_comments",
	"issue_history",
}
