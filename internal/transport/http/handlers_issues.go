package httptransport

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"faultline/internal/domain"
	"faultline/internal/storage"
	"faultline/internal/tracker"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type createIssueRequest struct {
	ProjectID   string `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	AssigneeID  string `json:"assignee_id"`
	ReporterID  string `json:"reporter_id"`
	Component   string `json:"component"`
	ActorID     string `json:"actor_id"`
}

func (h *Handler) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	var req createIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	draft := tracker.IssueDraft{
		Title:       req.Title,
		Description: req.Description,
		Component:   req.Component,
	}

	var err error
	if draft.ProjectID, err = domain.ParseProjectID(req.ProjectID); err != nil {
		badRequest(w, "project_id: %v", err)
		return
	}
	if draft.ReporterID, err = domain.ParseUserID(req.ReporterID); err != nil {
		badRequest(w, "reporter_id: %v", err)
		return
	}
	if req.AssigneeID != "" {
		if draft.AssigneeID, err = domain.ParseUserID(req.AssigneeID); err != nil {
			badRequest(w, "assignee_id: %v", err)
			return
		}
	}
	if req.ActorID != "" {
		if draft.ActorID, err = domain.ParseUserID(req.ActorID); err != nil {
			badRequest(w, "actor_id: %v", err)
			return
		}
	}
	if req.Status != "" {
		if draft.Status, err = domain.ParseStatus(req.Status); err != nil {
			badRequest(w, "%v", err)
			return
		}
	}
	if req.Priority != "" {
		if draft.Priority, err = domain.ParsePriority(req.Priority); err != nil {
			badRequest(w, "%v", err)
			return
		}
	}

	issue, result, err := h.tracker.CreateIssue(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, issueEnvelope{
		Issue:    toIssueResponse(issue),
		Warnings: warningsFor(result),
	})
}

func (h *Handler) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	projectID, issueID, ok := h.issueCoordinates(w, r)
	if !ok {
		return
	}
	issue, err := h.tracker.GetIssue(r.Context(), projectID, issueID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIssueResponse(issue))
}

// updateIssueRequest is a partial update: absent fields keep their current
// value. A present-but-empty assignee_id or component clears the field, which
// removes the issue's row from that projection.
type updateIssueRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssigneeID  *string `json:"assignee_id"`
	Component   *string `json:"component"`
	ActorID     string  `json:"actor_id"`
}

func (h *Handler) handleUpdateIssue(w http.ResponseWriter, r *http.Request) {
	projectID, issueID, ok := h.issueCoordinates(w, r)
	if !ok {
		return
	}
	var req updateIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	old, err := h.tracker.GetIssue(r.Context(), projectID, issueID)
	if err != nil {
		writeError(w, err)
		return
	}

	updated := old
	if req.Title != nil {
		updated.Title = *req.Title
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Status != nil {
		if updated.Status, err = domain.ParseStatus(*req.Status); err != nil {
			badRequest(w, "%v", err)
			return
		}
	}
	if req.Priority != nil {
		if updated.Priority, err = domain.ParsePriority(*req.Priority); err != nil {
			badRequest(w, "%v", err)
			return
		}
	}
	if req.AssigneeID != nil {
		if *req.AssigneeID == "" {
			updated.AssigneeID = domain.UserID{}
		} else if updated.AssigneeID, err = domain.ParseUserID(*req.AssigneeID); err != nil {
			badRequest(w, "assignee_id: %v", err)
			return
		}
	}
	if req.Component != nil {
		updated.Component = *req.Component
	}

	var actor domain.UserID
	if req.ActorID != "" {
		if actor, err = domain.ParseUserID(req.ActorID); err != nil {
			badRequest(w, "actor_id: %v", err)
			return
		}
	}

	issue, result, err := h.tracker.UpdateIssue(r.Context(), old, updated, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issueEnvelope{
		Issue:    toIssueResponse(issue),
		Warnings: warningsFor(result),
	})
}

func (h *Handler) handleDeleteIssue(w http.ResponseWriter, r *http.Request) {
	projectID, issueID, ok := h.issueCoordinates(w, r)
	if !ok {
		return
	}
	var actor domain.UserID
	if raw := r.URL.Query().Get("actor_id"); raw != "" {
		parsed, err := domain.ParseUserID(raw)
		if err != nil {
			badRequest(w, "actor_id: %v", err)
			return
		}
		actor = parsed
	}

	old, err := h.tracker.GetIssue(r.Context(), projectID, issueID)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.tracker.DeleteIssue(r.Context(), old, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	if warnings := warningsFor(result); warnings != nil {
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "warnings": warnings})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) handleListIssues(w http.ResponseWriter, r *http.Request) {
	projectID, err := domain.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		badRequest(w, "project id: %v", err)
		return
	}
	page, ok := h.pageFromQuery(w, r)
	if !ok {
		return
	}
	issues, state, err := h.tracker.ListIssuesByProject(r.Context(), projectID, page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIssueListResponse(issues, state))
}

// dimensionHandler lists issues from one secondary projection. These reads are
// eventually consistent with the primary.
func (h *Handler) dimensionHandler(dimension string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, ok := h.projectFromQuery(w, r)
		if !ok {
			return
		}
		value := chi.URLParam(r, "value")
		switch dimension {
		case "status":
			if _, err := domain.ParseStatus(value); err != nil {
				badRequest(w, "%v", err)
				return
			}
		case "priority":
			if _, err := domain.ParsePriority(value); err != nil {
				badRequest(w, "%v", err)
				return
			}
		case "assignee":
			if _, err := domain.ParseUserID(value); err != nil {
				badRequest(w, "assignee id: %v", err)
				return
			}
		}
		page, ok := h.pageFromQuery(w, r)
		if !ok {
			return
		}
		issues, state, err := h.tracker.ListIssuesByDimension(r.Context(), dimension, value, projectID, page)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toIssueListResponse(issues, state))
	}
}

func (h *Handler) handleListHistory(w http.ResponseWriter, r *http.Request) {
	projectID, issueID, ok := h.issueCoordinates(w, r)
	if !ok {
		return
	}
	page, ok := h.pageFromQuery(w, r)
	if !ok {
		return
	}
	events, state, err := h.tracker.ListHistory(r.Context(), projectID, issueID, page)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := historyListResponse{
		Events:        make([]historyEventResponse, 0, len(events)),
		NextPageToken: encodePageToken(state),
	}
	for _, e := range events {
		resp.Events = append(resp.Events, toHistoryEventResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	projectID, err := domain.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		badRequest(w, "project id: %v", err)
		return
	}
	stats, err := h.tracker.Statistics(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatisticsResponse(stats))
}

// issueCoordinates extracts the (project, issue) pair addressing one issue:
// the issue id from the path, the partition-defining project id from the
// query string.
func (h *Handler) issueCoordinates(w http.ResponseWriter, r *http.Request) (domain.ProjectID, domain.IssueID, bool) {
	issueID, err := domain.ParseIssueID(chi.URLParam(r, "issueID"))
	if err != nil {
		badRequest(w, "issue id: %v", err)
		return domain.ProjectID{}, domain.IssueID{}, false
	}
	projectID, ok := h.projectFromQuery(w, r)
	if !ok {
		return domain.ProjectID{}, domain.IssueID{}, false
	}
	return projectID, issueID, true
}

func (h *Handler) projectFromQuery(w http.ResponseWriter, r *http.Request) (domain.ProjectID, bool) {
	projectID, err := domain.ParseProjectID(r.URL.Query().Get("project_id"))
	if err != nil {
		badRequest(w, "project_id: %v", err)
		return domain.ProjectID{}, false
	}
	return projectID, true
}

func (h *Handler) pageFromQuery(w http.ResponseWriter, r *http.Request) (storage.Page, bool) {
	page := storage.Page{Size: defaultPageSize}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			badRequest(w, "limit must be a positive integer")
			return storage.Page{}, false
		}
		page.Size = min(limit, maxPageSize)
	}
	state, err := decodePageToken(r.URL.Query().Get("page_token"))
	if err != nil {
		badRequest(w, "%v", err)
		return storage.Page{}, false
	}
	page.State = state
	return page, true
}
