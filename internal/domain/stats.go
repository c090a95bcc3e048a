package domain

// ProjectStatistics is derived on demand from the by-project projection and is
// never persisted as a source of truth.
type ProjectStatistics struct {
	ProjectID   ProjectID
	Total       int
	ByStatus    map[Status]int
	ByPriority  map[Priority]int
	ByComponent map[string]int
}
