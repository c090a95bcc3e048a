package httptransport

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"faultline/internal/fanout"
	"faultline/internal/views"
	"faultline/pkg/platform/sentinel"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError translates domain errors into JSON error envelopes. Unknown
// errors become opaque 500s so internals never leak to callers.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, sentinel.ErrInvalidArgument):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, sentinel.ErrConflict):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, views.ErrInvalidTransition):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, fanout.ErrPrimaryWrite), errors.Is(err, sentinel.ErrUnavailable):
		status = http.StatusServiceUnavailable
		msg = "store unavailable"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func badRequest(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf(format, args...)})
}

// writeWarnings reports the non-fatal part of a mutation outcome. A degraded
// fan-out is still a successful mutation, but the caller is told which
// projections lag rather than being handed an opaque success.
type writeWarnings struct {
	DegradedProjections []string `json:"degraded_projections,omitempty"`
	HistoryError        string   `json:"history_error,omitempty"`
}

func warningsFor(result fanout.Result) *writeWarnings {
	if result.Clean() {
		return nil
	}
	w := &writeWarnings{}
	for _, d := range result.Degraded {
		w.DegradedProjections = append(w.DegradedProjections, d.Step.View.Name)
	}
	if result.HistoryErr != nil {
		w.HistoryError = "history append failed; projections are intact"
	}
	return w
}

// Page tokens are opaque to clients; the store decides what they contain.
func encodePageToken(state []byte) string {
	if len(state) == 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(state)
}

func decodePageToken(token string) ([]byte, error) {
	if token == "" {
		return nil, nil
	}
	state, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("malformed page token: %w", err)
	}
	return state, nil
}
