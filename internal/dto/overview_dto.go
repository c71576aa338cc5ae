package dto

// StudentOverviewResponse aggregates a student's workload counters.
type StudentOverviewResponse struct {
	TotalAssignments int64 `json:"totalAssignments"`
	Solved           int64 `json:"solved"`
	Pending          int64 `json:"pending"`
	OpenDoubts       int64 `json:"openDoubts"`
	ResolvedDoubts   int64 `json:"resolvedDoubts"`
}
