package httptransport

import (
	"time"

	"faultline/internal/domain"
)

type issueResponse struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	AssigneeID  string    `json:"assignee_id,omitempty"`
	ReporterID  string    `json:"reporter_id"`
	Component   string    `json:"component,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toIssueResponse(i domain.Issue) issueResponse {
	resp := issueResponse{
		ID:          i.ID.String(),
		ProjectID:   i.ProjectID.String(),
		Title:       i.Title,
		Description: i.Description,
		Status:      string(i.Status),
		Priority:    string(i.Priority),
		ReporterID:  i.ReporterID.String(),
		Component:   i.Component,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
	if !i.AssigneeID.IsNil() {
		resp.AssigneeID = i.AssigneeID.String()
	}
	return resp
}

// issueEnvelope wraps mutation responses so degraded fan-outs surface as
// warnings next to the issue itself.
type issueEnvelope struct {
	Issue    issueResponse  `json:"issue"`
	Warnings *writeWarnings `json:"warnings,omitempty"`
}

type issueListResponse struct {
	Issues        []issueResponse `json:"issues"`
	NextPageToken string          `json:"next_page_token,omitempty"`
}

func toIssueListResponse(issues []domain.Issue, state []byte) issueListResponse {
	resp := issueListResponse{Issues: make([]issueResponse, 0, len(issues))}
	for _, i := range issues {
		resp.Issues = append(resp.Issues, toIssueResponse(i))
	}
	resp.NextPageToken = encodePageToken(state)
	return resp
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

type projectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toProjectResponse(p domain.Project) projectResponse {
	return projectResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

type commentResponse struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"issue_id"`
	ProjectID string    `json:"project_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func toCommentResponse(c domain.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID.String(),
		IssueID:   c.IssueID.String(),
		ProjectID: c.ProjectID.String(),
		AuthorID:  c.AuthorID.String(),
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

type commentListResponse struct {
	Comments      []commentResponse `json:"comments"`
	NextPageToken string            `json:"next_page_token,omitempty"`
}

type historyEventResponse struct {
	ID         string    `json:"id"`
	IssueID    string    `json:"issue_id"`
	Field      string    `json:"field"`
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	ActorID    string    `json:"changed_by"`
	OccurredAt time.Time `json:"occurred_at"`
}

func toHistoryEventResponse(e domain.ChangeEvent) historyEventResponse {
	resp := historyEventResponse{
		ID:         e.ID.String(),
		IssueID:    e.IssueID.String(),
		Field:      e.Field,
		OldValue:   e.OldValue,
		NewValue:   e.NewValue,
		OccurredAt: e.OccurredAt,
	}
	if !e.ActorID.IsNil() {
		resp.ActorID = e.ActorID.String()
	}
	return resp
}

type historyListResponse struct {
	Events        []historyEventResponse `json:"events"`
	NextPageToken string                 `json:"next_page_token,omitempty"`
}

type statisticsResponse struct {
	ProjectID   string         `json:"project_id"`
	Total       int            `json:"total_issues"`
	ByStatus    map[string]int `json:"by_status"`
	ByPriority  map[string]int `json:"by_priority"`
	ByComponent map[string]int `json:"by_component"`
}

func toStatisticsResponse(s domain.ProjectStatistics) statisticsResponse {
	resp := statisticsResponse{
		ProjectID:   s.ProjectID.String(),
		Total:       s.Total,
		ByStatus:    make(map[string]int, len(s.ByStatus)),
		ByPriority:  make(map[string]int, len(s.ByPriority)),
		ByComponent: s.ByComponent,
	}
	for k, v := range s.ByStatus {
		resp.ByStatus[string(k)] = v
	}
	for k, v := range s.ByPriority {
		resp.ByPriority[string(k)] = v
	}
	return resp
}
