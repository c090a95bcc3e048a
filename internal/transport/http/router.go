// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// domain services and encode; no business logic lives here.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"faultline/internal/comments"
	"faultline/internal/directory"
	"faultline/internal/platform/middleware"
	"faultline/internal/tracker"
)

// HealthFunc probes store connectivity for the health endpoint.
type HealthFunc func(ctx context.Context) error

// Handler bundles the services behind the public endpoints.
type Handler struct {
	tracker   *tracker.Service
	comments  *comments.Service
	directory *directory.Service
	health    HealthFunc
	log       *slog.Logger
}

func NewHandler(
	trackerSvc *tracker.Service,
	commentsSvc *comments.Service,
	directorySvc *directory.Service,
	health HealthFunc,
	log *slog.Logger,
) *Handler {
	return &Handler{
		tracker:   trackerSvc,
		comments:  commentsSvc,
		directory: directorySvc,
		health:    health,
		log:       log,
	}
}

// NewRouter wires all public endpoints. Issue routes carry project_id as a
// query parameter because every read and write is partition-scoped.
func NewRouter(h *Handler, reg *prometheus.Registry, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/health", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.handleCreateUser)
		r.Get("/", h.handleListUsers)
		r.Get("/{userID}", h.handleGetUser)
	})

	r.Route("/projects", func(r chi.Router) {
		r.Post("/", h.handleCreateProject)
		r.Get("/", h.handleListProjects)
		r.Get("/{projectID}", h.handleGetProject)
		r.Get("/{projectID}/issues", h.handleListIssues)
		r.Get("/{projectID}/statistics", h.handleStatistics)
	})

	r.Route("/issues", func(r chi.Router) {
		r.Post("/", h.handleCreateIssue)

		// Dimension listings must precede /{issueID} so chi does not
		// swallow "status" as an issue id.
		r.Get("/status/{value}", h.dimensionHandler("status"))
		r.Get("/assignee/{value}", h.dimensionHandler("assignee"))
		r.Get("/priority/{value}", h.dimensionHandler("priority"))
		r.Get("/component/{value}", h.dimensionHandler("component"))

		r.Get("/{issueID}", h.handleGetIssue)
		r.Put("/{issueID}", h.handleUpdateIssue)
		r.Delete("/{issueID}", h.handleDeleteIssue)
		r.Post("/{issueID}/comments", h.handleAppendComment)
		r.Get("/{issueID}/comments", h.handleListComments)
		r.Get("/{issueID}/history", h.handleListHistory)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.health(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
