package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faultline/internal/domain"
	"faultline/internal/storage"
)

func testIssue() domain.Issue {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return domain.Issue{
		ProjectID:   domain.NewProjectID(),
		ID:          domain.NewIssueID(),
		Title:       "login broken",
		Description: "cannot sign in",
		Status:      domain.StatusOpen,
		Priority:    domain.PriorityHigh,
		AssigneeID:  domain.NewUserID(),
		ReporterID:  domain.NewUserID(),
		Component:   "auth",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func stepFor(t *testing.T, steps []Step, view View) Step {
	t.Helper()
	for _, s := range steps {
		if s.View.Name == view.Name {
			return s
		}
	}
	t.Fatalf("no step for view %s", view.Name)
	return Step{}
}

func hasView(steps []Step, view View) bool {
	for _, s := range steps {
		if s.View.Name == view.Name {
			return true
		}
	}
	return false
}

func TestPlanCreateCoversAllApplicableViews(t *testing.T) {
	issue := testIssue()

	plan, err := Plan(nil, &issue)
	require.NoError(t, err)

	assert.Equal(t, OpUpsert, plan.Primary.Op)
	assert.Equal(t, storage.TableIssuesByProject, plan.Primary.View.Table)
	assert.Len(t, plan.Secondaries, 4)
	for _, s := range plan.Secondaries {
		assert.Equal(t, OpUpsert, s.Op)
		assert.Equal(t, issue, s.Issue)
	}
}

func TestPlanCreateSkipsInapplicableViews(t *testing.T) {
	issue := testIssue()
	issue.AssigneeID = domain.UserID{}
	issue.Component = ""

	plan, err := Plan(nil, &issue)
	require.NoError(t, err)

	assert.Len(t, plan.Secondaries, 2)
	assert.False(t, hasView(plan.Secondaries, ByAssignee))
	assert.False(t, hasView(plan.Secondaries, ByComponent))
}

func TestPlanUpdateRefreshesInPlaceWhenKeysUnchanged(t *testing.T) {
	old := testIssue()
	updated := old
	updated.Title = "login still broken"

	plan, err := Plan(&old, &updated)
	require.NoError(t, err)

	assert.Equal(t, OpUpsert, plan.Primary.Op)
	require.Len(t, plan.Secondaries, 4)
	for _, s := range plan.Secondaries {
		assert.Equal(t, OpUpsert, s.Op, "unchanged key must refresh, not move")
	}
}

func TestPlanUpdateMovesStatusPartition(t *testing.T) {
	old := testIssue()
	updated := old
	updated.Status = domain.StatusResolved

	plan, err := Plan(&old, &updated)
	require.NoError(t, err)

	var statusSteps []Step
	for _, s := range plan.Secondaries {
		if s.View.Name == ByStatus.Name {
			statusSteps = append(statusSteps, s)
		}
	}
	require.Len(t, statusSteps, 2, "a moved row needs delete old + upsert new")

	ops := map[Op]Step{}
	for _, s := range statusSteps {
		ops[s.Op] = s
	}
	assert.Equal(t, string(domain.StatusOpen), ops[OpDelete].Key.Partition)
	assert.Equal(t, string(domain.StatusResolved), ops[OpUpsert].Key.Partition)
}

func TestPlanUpdateStatusChangeMovesAssigneeRow(t *testing.T) {
	old := testIssue()
	updated := old
	updated.Status = domain.StatusInProgress

	plan, err := Plan(&old, &updated)
	require.NoError(t, err)

	var assigneeSteps []Step
	for _, s := range plan.Secondaries {
		if s.View.Name == ByAssignee.Name {
			assigneeSteps = append(assigneeSteps, s)
		}
	}
	require.Len(t, assigneeSteps, 2, "status is part of the assignee clustering key")

	ops := map[Op]Step{}
	for _, s := range assigneeSteps {
		ops[s.Op] = s
	}
	assert.Equal(t, domain.StatusOpen, ops[OpDelete].Key.Status)
	assert.Equal(t, domain.StatusInProgress, ops[OpUpsert].Key.Status)
	assert.Equal(t, old.AssigneeID.String(), ops[OpDelete].Key.Partition)
	assert.Equal(t, old.AssigneeID.String(), ops[OpUpsert].Key.Partition)
}

func TestPlanUpdateUnassignDeletesAssigneeRow(t *testing.T) {
	old := testIssue()
	updated := old
	updated.AssigneeID = domain.UserID{}

	plan, err := Plan(&old, &updated)
	require.NoError(t, err)

	step := stepFor(t, plan.Secondaries, ByAssignee)
	assert.Equal(t, OpDelete, step.Op)
	assert.Equal(t, old.AssigneeID.String(), step.Key.Partition)
}

func TestPlanUpdateAssignInsertsAssigneeRow(t *testing.T) {
	old := testIssue()
	old.AssigneeID = domain.UserID{}
	updated := old
	updated.AssigneeID = domain.NewUserID()

	plan, err := Plan(&old, &updated)
	require.NoError(t, err)

	step := stepFor(t, plan.Secondaries, ByAssignee)
	assert.Equal(t, OpUpsert, step.Op)
	assert.Equal(t, updated.AssigneeID.String(), step.Key.Partition)
}

func TestPlanUpdateComponentMove(t *testing.T) {
	old := testIssue()
	updated := old
	updated.Component = "frontend"

	plan, err := Plan(&old, &updated)
	require.NoError(t, err)

	var componentSteps []Step
	for _, s := range plan.Secondaries {
		if s.View.Name == ByComponent.Name {
			componentSteps = append(componentSteps, s)
		}
	}
	require.Len(t, componentSteps, 2)
}

func TestPlanUpdateRejectsIdentityChange(t *testing.T) {
	old := testIssue()
	updated := old
	updated.ID = domain.NewIssueID()

	_, err := Plan(&old, &updated)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPlanUpdateRejectsReporterChange(t *testing.T) {
	old := testIssue()
	updated := old
	updated.ReporterID = domain.NewUserID()

	_, err := Plan(&old, &updated)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPlanUpdateRejectsCreatedAtChange(t *testing.T) {
	old := testIssue()
	updated := old
	updated.CreatedAt = old.CreatedAt.Add(time.Minute)

	_, err := Plan(&old, &updated)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPlanDeleteRemovesOnlyOccupiedViews(t *testing.T) {
	issue := testIssue()
	issue.Component = ""

	plan, err := Plan(&issue, nil)
	require.NoError(t, err)

	assert.Equal(t, OpDelete, plan.Primary.Op)
	assert.Len(t, plan.Secondaries, 3)
	assert.False(t, hasView(plan.Secondaries, ByComponent))
	for _, s := range plan.Secondaries {
		assert.Equal(t, OpDelete, s.Op)
	}
}

func TestPlanRejectsNilPair(t *testing.T) {
	_, err := Plan(nil, nil)
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestDeleteStepKeysCarryFullClusteringKey(t *testing.T) {
	issue := testIssue()

	plan, err := Plan(&issue, nil)
	require.NoError(t, err)

	step := stepFor(t, plan.Secondaries, ByAssignee)
	assert.Equal(t, issue.Status, step.Key.Status)
	assert.Equal(t, issue.CreatedAt, step.Key.CreatedAt)
	assert.Equal(t, issue.ID, step.Key.IssueID)
}
