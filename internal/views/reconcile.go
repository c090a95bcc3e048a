package views

import (
	"errors"

	"faultline/internal/domain"
)

// Reconciliation errors. ErrInvalidTransition covers old/new pairs that do not
// describe a legal mutation of a single issue.
var (
	ErrInvalidTransition = errors.New("invalid transition between issue states")
	ErrNoRecords         = errors.New("reconciliation requires an old or new record")
)

// Plan computes the projection writes needed to move the stored state from old
// to new. Exactly one of three shapes applies:
//
//   - old nil, new set: create — insert primary plus every applicable
//     secondary row.
//   - both set: update — refresh unchanged rows in place, move rows whose
//     projection key changed (delete old key, insert new key).
//   - old set, new nil: delete — remove primary plus every secondary row the
//     issue currently occupies.
//
// The caller must supply the full last-known old record on update and delete.
// Plan never guesses missing old values: a wrong guess would orphan a
// projection row that no later mutation can find again.
func Plan(old, new *domain.Issue) (WritePlan, error) {
	switch {
	case old == nil && new == nil:
		return WritePlan{}, ErrNoRecords
	case old == nil:
		return planCreate(*new), nil
	case new == nil:
		return planDelete(*old), nil
	}

	if !old.SameIdentity(*new) {
		return WritePlan{}, errors.Join(ErrInvalidTransition, errors.New("old and new records identify different issues"))
	}
	if old.ReporterID != new.ReporterID {
		return WritePlan{}, errors.Join(ErrInvalidTransition, errors.New("reporter is immutable"))
	}
	if !old.CreatedAt.Equal(new.CreatedAt) {
		return WritePlan{}, errors.Join(ErrInvalidTransition, errors.New("creation timestamp is immutable"))
	}
	return planUpdate(*old, *new), nil
}

func planCreate(issue domain.Issue) WritePlan {
	plan := WritePlan{Primary: upsert(ByProject, issue)}
	for _, v := range Secondaries() {
		if v.Applies(issue) {
			plan.Secondaries = append(plan.Secondaries, upsert(v, issue))
		}
	}
	return plan
}

func planDelete(issue domain.Issue) WritePlan {
	plan := WritePlan{Primary: del(ByProject, ByProject.Key(issue))}
	for _, v := range Secondaries() {
		if v.Applies(issue) {
			plan.Secondaries = append(plan.Secondaries, del(v, v.Key(issue)))
		}
	}
	return plan
}

// planUpdate compares each secondary view's key for the old and new state.
// Equal keys mean the row stays put and only its content is refreshed; any
// difference means the row moves partitions, which on a store without
// cross-table transactions is an independent delete plus insert. Assignee
// transitions between set and unset fall out of the Applies checks as pure
// inserts or deletes, never same-key updates.
func planUpdate(old, new domain.Issue) WritePlan {
	plan := WritePlan{Primary: upsert(ByProject, new)}
	for _, v := range Secondaries() {
		oldApplies, newApplies := v.Applies(old), v.Applies(new)
		oldKey, newKey := v.Key(old), v.Key(new)

		switch {
		case oldApplies && newApplies && oldKey == newKey:
			plan.Secondaries = append(plan.Secondaries, upsert(v, new))
		case oldApplies && newApplies:
			plan.Secondaries = append(plan.Secondaries, del(v, oldKey), upsert(v, new))
		case oldApplies:
			plan.Secondaries = append(plan.Secondaries, del(v, oldKey))
		case newApplies:
			plan.Secondaries = append(plan.Secondaries, upsert(v, new))
		}
	}
	return plan
}
