// Package directory manages the users and projects referenced by issues.
// Both live in single-partition tables and stay outside the fan-out path.
package directory

import (
	"context"
	"fmt"
	"time"

	"faultline/internal/domain"
	"faultline/internal/storage"
	"faultline/pkg/platform/sentinel"
)

type Service struct {
	users    storage.UserStore
	projects storage.ProjectStore
	now      func() time.Time
}

func NewService(users storage.UserStore, projects storage.ProjectStore) *Service {
	return &Service{
		users:    users,
		projects: projects,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *Service) CreateUser(ctx context.Context, username, email string, role domain.Role) (domain.User, error) {
	if len(username) < 3 {
		return domain.User{}, fmt.Errorf("username must be at least 3 characters: %w", sentinel.ErrInvalidArgument)
	}
	if email == "" {
		return domain.User{}, fmt.Errorf("email is required: %w", sentinel.ErrInvalidArgument)
	}
	if _, err := domain.ParseRole(string(role)); err != nil {
		return domain.User{}, fmt.Errorf("%v: %w", err, sentinel.ErrInvalidArgument)
	}

	user := domain.User{
		ID:        domain.NewUserID(),
		Username:  username,
		Email:     email,
		Role:      role,
		CreatedAt: s.now(),
	}
	if err := s.users.SaveUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id domain.UserID) (domain.User, error) {
	return s.users.FindUser(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit int) ([]domain.User, error) {
	return s.users.ListUsers(ctx, limit)
}

func (s *Service) CreateProject(ctx context.Context, name, description string) (domain.Project, error) {
	if name == "" {
		return domain.Project{}, fmt.Errorf("project name is required: %w", sentinel.ErrInvalidArgument)
	}

	project := domain.Project{
		ID:          domain.NewProjectID(),
		Name:        name,
		Description: description,
		CreatedAt:   s.now(),
	}
	if err := s.projects.SaveProject(ctx, project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

func (s *Service) GetProject(ctx context.Context, id domain.ProjectID) (domain.Project, error) {
	return s.projects.FindProject(ctx, id)
}

func (s *Service) ListProjects(ctx context.Context, limit int) ([]domain.Project, error) {
	return s.projects.ListProjects(ctx, limit)
}
