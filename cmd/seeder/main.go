// Command seeder populates the store with a small, known dataset for local
// development. It goes through the same services as the HTTP layer, so every
// seeded issue fans out to all projections and produces history.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"faultline/internal/directory"
	"faultline/internal/domain"
	"faultline/internal/fanout"
	"faultline/internal/history"
	"faultline/internal/platform/config"
	"faultline/internal/platform/logger"
	"faultline/internal/platform/metrics"
	"faultline/internal/stats"
	"faultline/internal/storage/cassandra"
	"faultline/internal/tracker"
)

func main() {
	reset := flag.Bool("reset", false, "truncate all tables before seeding")
	flag.Parse()

	if err := run(*reset); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)

	session, err := cassandra.Connect(cassandra.Config{
		Hosts:          cfg.Cassandra.Hosts,
		Port:           cfg.Cassandra.Port,
		Keyspace:       cfg.Cassandra.Keyspace,
		ConnectTimeout: cfg.Cassandra.ConnectTimeout,
		QueryTimeout:   cfg.Cassandra.QueryTimeout,
		Replication:    cfg.Cassandra.Replication,
	}, log)
	if err != nil {
		return err
	}
	defer session.Close()

	store := cassandra.NewStore(session)
	met := metrics.New(prometheus.NewRegistry())
	writer := fanout.NewWriter(store, log, met, fanout.DefaultConfig())
	recorder := history.NewRecorder(store, nil, log, met)
	trackerSvc := tracker.NewService(store, writer, recorder, stats.NewAggregator(store), store, store, log, met)
	directorySvc := directory.NewService(store, store)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if reset {
		log.Info("truncating all tables")
		if err := store.TruncateAll(ctx); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
	}

	return seed(ctx, trackerSvc, directorySvc, log)
}

func seed(ctx context.Context, trackerSvc *tracker.Service, directorySvc *directory.Service, log *slog.Logger) error {
	specs := []struct{ username, email, role string }{
		{"admin_user", "admin@company.com", "admin"},
		{"dev_user1", "dev1@company.com", "developer"},
		{"dev_user2", "dev2@company.com", "developer"},
		{"tester_user", "tester@company.com", "tester"},
	}
	users := make([]domain.User, 0, len(specs))
	for _, spec := range specs {
		user, err := directorySvc.CreateUser(ctx, spec.username, spec.email, domain.Role(spec.role))
		if err != nil {
			return fmt.Errorf("create user %s: %w", spec.username, err)
		}
		users = append(users, user)
	}
	admin, dev1, dev2, tester := users[0], users[1], users[2], users[3]

	webApp, err := directorySvc.CreateProject(ctx, "Web Application", "Primary customer-facing web application")
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	mobile, err := directorySvc.CreateProject(ctx, "Mobile App", "iOS and Android client")
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	drafts := []tracker.IssueDraft{
		{
			ProjectID:   webApp.ID,
			Title:       "Login fails with valid credentials",
			Description: "Users cannot sign in even though their credentials are correct",
			Status:      domain.StatusOpen,
			Priority:    domain.PriorityHigh,
			AssigneeID:  dev1.ID,
			ReporterID:  tester.ID,
			Component:   "authentication",
		},
		{
			ProjectID:   webApp.ID,
			Title:       "Slow landing page",
			Description: "The landing page takes more than 5 seconds to load",
			Status:      domain.StatusInProgress,
			Priority:    domain.PriorityMedium,
			AssigneeID:  dev2.ID,
			ReporterID:  admin.ID,
			Component:   "performance",
		},
		{
			ProjectID:   webApp.ID,
			Title:       "Broken layout in Safari",
			Description: "The profile page renders incorrectly in Safari",
			Status:      domain.StatusOpen,
			Priority:    domain.PriorityLow,
			ReporterID:  tester.ID,
			Component:   "frontend",
		},
		{
			ProjectID:   mobile.ID,
			Title:       "Crash on screen rotation",
			Description: "The app crashes when the device orientation changes on the home screen",
			Status:      domain.StatusOpen,
			Priority:    domain.PriorityCritical,
			AssigneeID:  dev1.ID,
			ReporterID:  tester.ID,
			Component:   "ui",
		},
	}

	for _, draft := range drafts {
		issue, result, err := trackerSvc.CreateIssue(ctx, draft)
		if err != nil {
			return fmt.Errorf("create issue %q: %w", draft.Title, err)
		}
		if !result.Clean() {
			log.Warn("issue seeded with degraded projections",
				"issue_id", issue.ID.String(), "degraded", len(result.Degraded))
			continue
		}
		log.Info("issue seeded", "issue_id", issue.ID.String(), "title", issue.Title)
	}

	log.Info("seed complete", "users", len(users), "projects", 2, "issues", len(drafts))
	return nil
}
