package domain

import "time"

type JobState string

const (
	JobCreated           JobState = "created"
	JobWorkspaceAcquired JobState = "workspace_acquired"
	JobPlaylistFetched   JobState = "playlist_fetched"
	JobPlaylistValidated JobState = "playlist_validated"
	JobRemuxed           JobState = "remuxed"
	JobCompleted         JobState = "completed"
	JobFailed            JobState = "failed"
)

// RetryPolicy bounds the playlist fetch: MaxAttempts total attempts with a
// fixed Delay between them. MaxAttempts below 1 is treated as 1.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Normalize clamps the policy to its invariants.
func (p RetryPolicy) Normalize() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	return p
}

// JobResult is the single terminal outcome of one DownloadJob.
type JobResult struct {
	JobID      string    `json:"job_id"`
	URL        string    `json:"url"`
	OutputFile string    `json:"output_file,omitempty"`
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// BatchSummary holds the running counters for a batch. The orchestrator's
// collector goroutine is the only writer, so SuccessCount+FailedCount ==
// CompletedCount <= Total holds at every observation point.
type BatchSummary struct {
	Total          int `json:"total"`
	SuccessCount   int `json:"success_count"`
	FailedCount    int `json:"failed_count"`
	CompletedCount int `json:"completed_count"`
}

// ProgressEvent is emitted once per job completion, in completion order.
type ProgressEvent struct {
	BatchID string
	Summary BatchSummary
	Result  JobResult
}

// ProgressSink consumes progress events. Front-ends implement this to render
// logs and progress bars; the engine never blocks on rendering decisions
// beyond the sink call itself.
type ProgressSink interface {
	Progress(ev ProgressEvent)
}
