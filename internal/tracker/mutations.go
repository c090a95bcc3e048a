package tracker

import (
	"context"
	"fmt"
	"time"

	"faultline/internal/domain"
	"faultline/internal/fanout"
	"faultline/internal/history"
	"faultline/internal/views"
	"faultline/pkg/platform/sentinel"
)

// IssueDraft carries caller-supplied fields for a new issue. Identity and
// timestamps are assigned by the service. ActorID attributes the history
// events; when nil the reporter is used.
type IssueDraft struct {
	ProjectID   domain.ProjectID
	Title       string
	Description string
	Status      domain.Status
	Priority    domain.Priority
	AssigneeID  domain.UserID
	ReporterID  domain.UserID
	Component   string
	ActorID     domain.UserID
}

func (d IssueDraft) actor() domain.UserID {
	if d.ActorID.IsNil() {
		return d.ReporterID
	}
	return d.ActorID
}

// CreateIssue validates references, writes the primary row plus every
// applicable secondary row, and appends one history event per populated
// field. The returned result may report degraded secondary writes; the issue
// itself has still been created.
func (s *Service) CreateIssue(ctx context.Context, draft IssueDraft) (domain.Issue, fanout.Result, error) {
	ctx, span := s.tracer.Start(ctx, "tracker.CreateIssue")
	defer span.End()
	defer s.observe("create")()

	if draft.Status == "" {
		draft.Status = domain.StatusOpen
	}
	if draft.Priority == "" {
		draft.Priority = domain.PriorityMedium
	}

	now := s.now()
	issue := domain.Issue{
		ProjectID:   draft.ProjectID,
		ID:          domain.NewIssueID(),
		Title:       draft.Title,
		Description: draft.Description,
		Status:      draft.Status,
		Priority:    draft.Priority,
		AssigneeID:  draft.AssigneeID,
		ReporterID:  draft.ReporterID,
		Component:   draft.Component,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := issue.Validate(); err != nil {
		return domain.Issue{}, fanout.Result{}, fmt.Errorf("validate issue: %v: %w", err, sentinel.ErrInvalidArgument)
	}
	if err := s.checkReferences(ctx, issue); err != nil {
		return domain.Issue{}, fanout.Result{}, err
	}

	plan, err := views.Plan(nil, &issue)
	if err != nil {
		return domain.Issue{}, fanout.Result{}, err
	}
	result, err := s.writer.Apply(ctx, plan)
	if err != nil {
		return domain.Issue{}, fanout.Result{}, err
	}

	result.HistoryErr = s.record(ctx, history.CreationEvents(issue, draft.actor(), now))
	s.logOutcome(ctx, "issue created", issue, result)
	return issue, result, nil
}

// UpdateIssue reconciles old against new and moves projection rows whose keys
// changed. The caller must supply the full last-known old record; the service
// never reconstructs it, since guessing old values would orphan rows. The new
// record's modification time is stamped here.
func (s *Service) UpdateIssue(ctx context.Context, old, new domain.Issue, actor domain.UserID) (domain.Issue, fanout.Result, error) {
	ctx, span := s.tracer.Start(ctx, "tracker.UpdateIssue")
	defer span.End()
	defer s.observe("update")()

	if err := new.Validate(); err != nil {
		return domain.Issue{}, fanout.Result{}, fmt.Errorf("validate issue: %v: %w", err, sentinel.ErrInvalidArgument)
	}
	if actor.IsNil() {
		actor = old.ReporterID
	}
	if new.AssigneeID != old.AssigneeID && !new.AssigneeID.IsNil() {
		if _, err := s.users.FindUser(ctx, new.AssigneeID); err != nil {
			return domain.Issue{}, fanout.Result{}, err
		}
	}
	new.UpdatedAt = s.now()

	plan, err := views.Plan(&old, &new)
	if err != nil {
		return domain.Issue{}, fanout.Result{}, err
	}
	result, err := s.writer.Apply(ctx, plan)
	if err != nil {
		return domain.Issue{}, fanout.Result{}, err
	}

	result.HistoryErr = s.record(ctx, history.UpdateEvents(old, new, actor, new.UpdatedAt))
	s.logOutcome(ctx, "issue updated", new, result)
	return new, result, nil
}

// DeleteIssue removes the issue from the primary projection and from every
// secondary projection it currently occupies, then appends the terminal
// history event. History itself is never deleted.
func (s *Service) DeleteIssue(ctx context.Context, old domain.Issue, actor domain.UserID) (fanout.Result, error) {
	ctx, span := s.tracer.Start(ctx, "tracker.DeleteIssue")
	defer span.End()
	defer s.observe("delete")()

	if actor.IsNil() {
		actor = old.ReporterID
	}

	plan, err := views.Plan(&old, nil)
	if err != nil {
		return fanout.Result{}, err
	}
	result, err := s.writer.Apply(ctx, plan)
	if err != nil {
		return fanout.Result{}, err
	}

	result.HistoryErr = s.record(ctx, []domain.ChangeEvent{history.DeletionEvent(old, actor, s.now())})
	s.logOutcome(ctx, "issue deleted", old, result)
	return result, nil
}

// record appends history detached from caller cancellation: once the primary
// write has committed, an aborted audit trail would be worse than a slow one.
func (s *Service) record(ctx context.Context, events []domain.ChangeEvent) error {
	return s.recorder.Record(context.WithoutCancel(ctx), events)
}

func (s *Service) checkReferences(ctx context.Context, issue domain.Issue) error {
	if _, err := s.projects.FindProject(ctx, issue.ProjectID); err != nil {
		return err
	}
	if _, err := s.users.FindUser(ctx, issue.ReporterID); err != nil {
		return err
	}
	if !issue.AssigneeID.IsNil() {
		if _, err := s.users.FindUser(ctx, issue.AssigneeID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) observe(operation string) func() {
	start := time.Now()
	return func() {
		s.met.MutationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

func (s *Service) logOutcome(ctx context.Context, msg string, issue domain.Issue, result fanout.Result) {
	if result.Clean() {
		s.log.InfoContext(ctx, msg, "project_id", issue.ProjectID.String(), "issue_id", issue.ID.String())
		return
	}
	s.log.WarnContext(ctx, msg+" with degradation",
		"project_id", issue.ProjectID.String(),
		"issue_id", issue.ID.String(),
		"degraded", len(result.Degraded),
		"history_error", result.HistoryErr,
	)
}
