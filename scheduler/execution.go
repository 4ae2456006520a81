package scheduler

// Execution is one recorded run of a scheduled job. Each tick that picks
// up a due job creates an execution row, giving operators run history for
// debugging and failure troubleshooting.
type Execution struct {
	ID             string
	ScheduledJobID string
	JobType        string
	Region         string

	Status string

	Requested int
	Succeeded int
	Failed    int

	StartedAt    string  // RFC3339
	CompletedAt  *string // RFC3339, nil while running
	DurationMs   *int
	ErrorMessage *string

	CreatedAt string
	UpdatedAt string
}

// Execution status constants
const (
	ExecutionStatusRunning   = "running"
	ExecutionStatusCompleted = "completed"
	ExecutionStatusSkipped   = "skipped"
	ExecutionStatusFailed    = "failed"
)
