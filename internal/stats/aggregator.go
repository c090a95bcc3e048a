// Package stats computes per-project aggregates. It scans only the primary
// by-project projection: secondary projections may be transiently missing or
// carrying stale rows while degraded writes await retry, so any count taken
// from them could disagree with the true membership.
package stats

import (
	"context"
	"fmt"

	"faultline/internal/domain"
	"faultline/internal/storage"
)

const scanPageSize = 500

// Aggregator recomputes statistics from current primary state on every call.
// There is no cache: staleness is bounded to zero at the cost of an
// O(issues-in-project) scan, acceptable because the call is rare next to
// mutation volume.
type Aggregator struct {
	store storage.IssueProjectionStore
}

func NewAggregator(store storage.IssueProjectionStore) *Aggregator {
	return &Aggregator{store: store}
}

// Aggregate counts issues by status, priority and component in one pass over
// the primary partition.
func (a *Aggregator) Aggregate(ctx context.Context, projectID domain.ProjectID) (domain.ProjectStatistics, error) {
	out := domain.ProjectStatistics{
		ProjectID:   projectID,
		ByStatus:    make(map[domain.Status]int),
		ByPriority:  make(map[domain.Priority]int),
		ByComponent: make(map[string]int),
	}

	page := storage.Page{Size: scanPageSize}
	for {
		issues, state, err := a.store.Scan(ctx, storage.TableIssuesByProject, projectID, "", page)
		if err != nil {
			return domain.ProjectStatistics{}, fmt.Errorf("scan primary projection: %w", err)
		}
		for _, issue := range issues {
			out.Total++
			out.ByStatus[issue.Status]++
			out.ByPriority[issue.Priority]++
			if issue.Component != "" {
				out.ByComponent[issue.Component]++
			}
		}
		if len(state) == 0 {
			break
		}
		page.State = state
	}
	return out, nil
}
