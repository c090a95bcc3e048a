package views

import (
	"faultline/internal/domain"
	"faultline/internal/storage"
)

// Op is a projection write operation.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// Step is one projection write or delete. Steps are self-contained: a step can
// be re-executed later (degraded-write retry) without re-deriving anything
// from current issue state.
type Step struct {
	Op   Op
	View View
	Key  storage.RowKey

	// Issue is the full row content for upserts and is zero for deletes.
	Issue domain.Issue
}

// WritePlan is the complete set of projection writes for one mutation. The
// primary step must succeed before any secondary step is attempted; secondary
// steps carry no ordering dependency among themselves.
type WritePlan struct {
	Primary     Step
	Secondaries []Step
}

func upsert(v View, issue domain.Issue) Step {
	return Step{Op: OpUpsert, View: v, Key: v.Key(issue), Issue: issue}
}

func del(v View, key storage.RowKey) Step {
	return Step{Op: OpDelete, View: v, Key: key}
}
