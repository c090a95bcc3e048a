package domain

import "time"

// Project scopes issues. Issue identifiers are unique within a project and
// every projection partitions by project first.
type Project struct {
	ID          ProjectID
	Name        string
	Description string
	CreatedAt   time.Time
}
