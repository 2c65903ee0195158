// Package engine runs batches of download jobs across a bounded worker pool
// and aggregates their results.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/kmorav/gom3u8/internal/app"
	"github.com/kmorav/gom3u8/internal/domain"
	"github.com/segmentio/ksuid"
)

// saveTimeout bounds each history write so archiving survives batch
// cancellation without hanging on a broken store.
const saveTimeout = 5 * time.Second

// BatchOptions tunes one RunBatch call.
type BatchOptions struct {
	// BatchID lets a front-end name the batch up front (the API does, so it
	// can hand out the id before the batch finishes). Empty means generate.
	BatchID string

	// Concurrency bounds the worker pool. Zero or negative falls back to
	// the configured download.concurrency.
	Concurrency int

	// Retry overrides the configured fetch retry policy when MaxAttempts > 0.
	Retry domain.RetryPolicy

	// Sink receives one progress event per completed job, in completion
	// order. Optional.
	Sink domain.ProgressSink
}

// Orchestrator coordinates DownloadJobs over a worker pool.
type Orchestrator struct {
	app *app.Context
}

func NewOrchestrator(appCtx *app.Context) *Orchestrator {
	return &Orchestrator{app: appCtx}
}

// RunBatch creates one DownloadJob per URL and runs them across a pool
// bounded by the concurrency limit. It returns only after every job reached
// a terminal state; one job's failure never blocks or cancels its siblings.
// Cancelling ctx fails the jobs that have not finished yet (releasing their
// workspaces) and still returns a complete summary.
func (o *Orchestrator) RunBatch(ctx context.Context, urls []string, opts BatchOptions) (domain.BatchSummary, error) {
	if len(urls) == 0 {
		return domain.BatchSummary{}, domain.ErrEmptyBatch
	}

	batchID := opts.BatchID
	if batchID == "" {
		batchID = ksuid.New().String()
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = o.app.Config.Download.Concurrency
	}
	if concurrency > len(urls) {
		concurrency = len(urls)
	}

	policy := opts.Retry
	if policy.MaxAttempts <= 0 {
		policy = domain.RetryPolicy{
			MaxAttempts: o.app.Config.Fetch.RetryCount,
			Delay:       o.app.Config.Fetch.RetryDelay(),
		}
	}

	o.app.Logger.Info("Starting batch %s: %d url(s), concurrency %d", batchID, len(urls), concurrency)

	// Every job is queued up front so each URL is guaranteed exactly one
	// terminal result even if ctx is cancelled mid-batch.
	jobs := make(chan *DownloadJob, len(urls))
	for _, u := range urls {
		jobs <- NewDownloadJob(o.app, u, policy)
	}
	close(jobs)

	results := make(chan domain.JobResult, concurrency)

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.worker(ctx, jobs, results)
		}()
	}

	// Single collector: the only writer of the summary, so counter updates
	// need no further synchronization.
	summary := domain.BatchSummary{Total: len(urls)}
	for summary.CompletedCount < summary.Total {
		res := <-results

		if res.Success {
			summary.SuccessCount++
		} else {
			summary.FailedCount++
		}
		summary.CompletedCount++

		if res.Success {
			o.app.Logger.Info("[%d/%d] %s", summary.CompletedCount, summary.Total, res.Message)
		} else {
			o.app.Logger.Warn("[%d/%d] %s - %s", summary.CompletedCount, summary.Total, res.URL, res.Message)
		}

		if o.app.Store != nil {
			// Detached context: a cancelled batch still gets its terminal
			// results archived.
			saveCtx, cancel := context.WithTimeout(context.Background(), saveTimeout)
			if err := o.app.Store.SaveResult(saveCtx, batchID, res); err != nil {
				o.app.Logger.Warn("Failed to archive result for %s: %v", res.URL, err)
			}
			cancel()
		}

		if opts.Sink != nil {
			opts.Sink.Progress(domain.ProgressEvent{
				BatchID: batchID,
				Summary: summary,
				Result:  res,
			})
		}
	}

	wg.Wait()

	o.app.Logger.Info("Batch %s finished: %d succeeded, %d failed", batchID, summary.SuccessCount, summary.FailedCount)

	return summary, nil
}

// worker drains the job queue. Once ctx is cancelled remaining jobs are
// short-circuited into failed results without ever acquiring a workspace.
func (o *Orchestrator) worker(ctx context.Context, jobs <-chan *DownloadJob, results chan<- domain.JobResult) {
	for job := range jobs {
		select {
		case <-ctx.Done():
			results <- o.cancelled(job, ctx.Err())
		default:
			results <- job.Run(ctx)
		}
	}
}

func (o *Orchestrator) cancelled(job *DownloadJob, cause error) domain.JobResult {
	job.State = domain.JobFailed
	now := time.Now()
	return domain.JobResult{
		JobID:      job.ID,
		URL:        job.SourceURL,
		Success:    false,
		Message:    "cancelled: " + cause.Error(),
		StartedAt:  now,
		FinishedAt: now,
	}
}
