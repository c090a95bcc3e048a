package domain

import (
	"fmt"
	"time"
)

// Role classifies a user for the directory. Authorization decisions are made
// by an external collaborator; the core just stores the label.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleDeveloper      Role = "developer"
	RoleTester         Role = "tester"
	RoleProjectManager Role = "project_manager"
)

func ParseRole(raw string) (Role, error) {
	switch r := Role(raw); r {
	case RoleAdmin, RoleDeveloper, RoleTester, RoleProjectManager:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// User is a directory entry referenced by issues as reporter or assignee.
type User struct {
	ID        UserID
	Username  string
	Email     string
	Role      Role
	CreatedAt time.Time
}
