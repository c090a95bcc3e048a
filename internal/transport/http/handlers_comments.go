package httptransport

import (
	"encoding/json"
	"net/http"

	"faultline/internal/domain"
)

type appendCommentRequest struct {
	AuthorID string `json:"author_id"`
	Content  string `json:"content"`
}

func (h *Handler) handleAppendComment(w http.ResponseWriter, r *http.Request) {
	projectID, issueID, ok := h.issueCoordinates(w, r)
	if !ok {
		return
	}
	var req appendCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	authorID, err := domain.ParseUserID(req.AuthorID)
	if err != nil {
		badRequest(w, "author_id: %v", err)
		return
	}

	// The issue must exist; comments on deleted issues would be orphaned.
	if _, err := h.tracker.GetIssue(r.Context(), projectID, issueID); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Append(r.Context(), projectID, issueID, authorID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentResponse(comment))
}

func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	projectID, issueID, ok := h.issueCoordinates(w, r)
	if !ok {
		return
	}
	page, ok := h.pageFromQuery(w, r)
	if !ok {
		return
	}
	list, state, err := h.comments.List(r.Context(), projectID, issueID, page)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := commentListResponse{
		Comments:      make([]commentResponse, 0, len(list)),
		NextPageToken: encodePageToken(state),
	}
	for _, c := range list {
		resp.Comments = append(resp.Comments, toCommentResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}
