// Package views declares the projection catalog and computes write plans for
// issue mutations. Each view describes one denormalized projection table:
// what it partitions by and which issues belong to it. The catalog is the
// single place that knows how issue fields map onto projection keys; the
// fan-out writer only executes plans, it never derives keys itself.
package views

import (
	"faultline/internal/domain"
	"faultline/internal/storage"
)

// Dimension names addressable through listIssuesByDimension.
const (
	DimensionStatus    = "status"
	DimensionAssignee  = "assignee"
	DimensionPriority  = "priority"
	DimensionComponent = "component"
)

// View describes one projection table.
type View struct {
	Name      string
	Table     string
	Dimension string
	primary   bool
}

var (
	// ByProject is the primary projection and the single source of truth.
	// Its key is the immutable issue identity, so it is always upserted in
	// place and never moves between partitions.
	ByProject = View{Name: "by_project", Table: storage.TableIssuesByProject, primary: true}

	ByStatus    = View{Name: "by_status", Table: storage.TableIssuesByStatus, Dimension: DimensionStatus}
	ByAssignee  = View{Name: "by_assignee", Table: storage.TableIssuesByAssignee, Dimension: DimensionAssignee}
	ByPriority  = View{Name: "by_priority", Table: storage.TableIssuesByPriority, Dimension: DimensionPriority}
	ByComponent = View{Name: "by_component", Table: storage.TableIssuesByComponent, Dimension: DimensionComponent}
)

// Secondaries returns the secondary projections in catalog order.
func Secondaries() []View {
	return []View{ByStatus, ByAssignee, ByPriority, ByComponent}
}

// ForDimension resolves a view by its public dimension name.
func ForDimension(dimension string) (View, bool) {
	for _, v := range Secondaries() {
		if v.Dimension == dimension {
			return v, true
		}
	}
	return View{}, false
}

// Primary reports whether this is the by-project projection.
func (v View) Primary() bool { return v.primary }

// Applies reports whether the issue owns a row in this projection. Issues
// without an assignee or component have no row in those views.
func (v View) Applies(issue domain.Issue) bool {
	switch v.Dimension {
	case DimensionAssignee:
		return !issue.AssigneeID.IsNil()
	case DimensionComponent:
		return issue.Component != ""
	default:
		return true
	}
}

// Key computes the projection row key for an issue. The by-assignee table
// clusters by status, so its key carries the status as well; a status change
// therefore moves the assignee row even though the partition is unchanged.
func (v View) Key(issue domain.Issue) storage.RowKey {
	key := storage.RowKey{
		ProjectID: issue.ProjectID,
		CreatedAt: issue.CreatedAt,
		IssueID:   issue.ID,
	}
	switch v.Dimension {
	case DimensionStatus:
		key.Partition = string(issue.Status)
	case DimensionAssignee:
		key.Partition = issue.AssigneeID.String()
		key.Status = issue.Status
	case DimensionPriority:
		key.Partition = string(issue.Priority)
	case DimensionComponent:
		key.Partition = issue.Component
	}
	return key
}
