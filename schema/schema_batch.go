package schema

import "time"

// RepoState tracks one repository through the batch state machine:
// PENDING -> (CACHED | RUNNING) -> (SUCCEEDED | FAILED).
type RepoState string

// All batch repository states.
const (
	PendingState   RepoState = "pending"
	CachedState    RepoState = "cached"
	RunningState   RepoState = "running"
	SucceededState RepoState = "succeeded"
	FailedState    RepoState = "failed"
)

// RepoError is one row of the batch errors table.
type RepoError struct {
	RepoID   string    `json:"repo_id"`
	Message  string    `json:"message"`
	FailedAt time.Time `json:"failed_at"`
}

// BatchResult consolidates a batch run: the metrics table, the errors table
// and the final state of every requested repository. Rows are keyed by the
// stable repository identity, never by position in the input list.
type BatchResult struct {
	Metrics map[string]MetricRecord `json:"metrics"`
	Errors  map[string]RepoError    `json:"errors"`
	States  map[string]RepoState    `json:"states"`
}

// NewBatchResult returns an empty consolidated result.
func NewBatchResult() *BatchResult {
	return &BatchResult{
		Metrics: make(map[string]MetricRecord),
		Errors:  make(map[string]RepoError),
		States:  make(map[string]RepoState),
	}
}
