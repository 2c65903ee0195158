package engine

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kmorav/gom3u8/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures progress events in the order they were delivered.
type recordingSink struct {
	mu     sync.Mutex
	events []domain.ProgressEvent
}

func (s *recordingSink) Progress(ev domain.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) all() []domain.ProgressEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ProgressEvent(nil), s.events...)
}

func TestRunBatchRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	appCtx := testAppContext(t, okFetcher("#EXTM3U\n"), okRemuxer())
	orch := NewOrchestrator(appCtx)

	_, err := orch.RunBatch(context.Background(), nil, BatchOptions{})
	require.ErrorIs(t, err, domain.ErrEmptyBatch)

	_, err = orch.RunBatch(context.Background(), []string{}, BatchOptions{})
	require.ErrorIs(t, err, domain.ErrEmptyBatch)

	// Rejection happens before any job side effects.
	assert.Empty(t, tempDirs(t, appCtx.Config.Download.OutDir))
}

func TestRunBatchCountsMixedOutcomes(t *testing.T) {
	t.Parallel()

	// Two of the five URLs serve something that is not a playlist.
	fetcher := fetcherFunc(func(ctx context.Context, rawURL string, profile domain.HeaderProfile, policy domain.RetryPolicy) ([]byte, error) {
		if strings.Contains(rawURL, "bad") {
			return []byte("<html>not a playlist</html>"), nil
		}
		return []byte("#EXTM3U\nseg.ts\n"), nil
	})

	appCtx := testAppContext(t, fetcher, okRemuxer())
	orch := NewOrchestrator(appCtx)

	urls := []string{
		"https://host.example/a.m3u8",
		"https://host.example/bad-1.m3u8",
		"https://host.example/b.m3u8",
		"https://host.example/bad-2.m3u8",
		"https://host.example/c.m3u8",
	}

	sink := &recordingSink{}
	summary, err := orch.RunBatch(context.Background(), urls, BatchOptions{Concurrency: 2, Sink: sink})
	require.NoError(t, err)

	assert.Equal(t, domain.BatchSummary{
		Total:          5,
		SuccessCount:   3,
		FailedCount:    2,
		CompletedCount: 5,
	}, summary)

	events := sink.all()
	require.Len(t, events, 5)

	// One event per URL, counters consistent and monotonic at every step.
	seen := make(map[string]bool)
	for i, ev := range events {
		s := ev.Summary
		assert.Equal(t, i+1, s.CompletedCount)
		assert.Equal(t, s.CompletedCount, s.SuccessCount+s.FailedCount)
		assert.LessOrEqual(t, s.CompletedCount, s.Total)
		assert.False(t, seen[ev.Result.URL], "duplicate event for %s", ev.Result.URL)
		seen[ev.Result.URL] = true
	}
	assert.Len(t, seen, 5)

	assert.Empty(t, tempDirs(t, appCtx.Config.Download.OutDir))
}

func TestRunBatchBoundsConcurrency(t *testing.T) {
	t.Parallel()

	var current, peak atomic.Int32
	fetcher := fetcherFunc(func(ctx context.Context, rawURL string, profile domain.HeaderProfile, policy domain.RetryPolicy) ([]byte, error) {
		n := current.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		current.Add(-1)
		return []byte("#EXTM3U\nseg.ts\n"), nil
	})

	appCtx := testAppContext(t, fetcher, okRemuxer())
	orch := NewOrchestrator(appCtx)

	urls := []string{
		"https://host.example/1.m3u8",
		"https://host.example/2.m3u8",
		"https://host.example/3.m3u8",
		"https://host.example/4.m3u8",
		"https://host.example/5.m3u8",
		"https://host.example/6.m3u8",
	}

	summary, err := orch.RunBatch(context.Background(), urls, BatchOptions{Concurrency: 2})
	require.NoError(t, err)

	assert.Equal(t, 6, summary.SuccessCount)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunBatchSurvivesPanickingJob(t *testing.T) {
	t.Parallel()

	fetcher := fetcherFunc(func(ctx context.Context, rawURL string, profile domain.HeaderProfile, policy domain.RetryPolicy) ([]byte, error) {
		if strings.Contains(rawURL, "boom") {
			panic("fetcher blew up")
		}
		return []byte("#EXTM3U\nseg.ts\n"), nil
	})

	appCtx := testAppContext(t, fetcher, okRemuxer())
	orch := NewOrchestrator(appCtx)

	urls := []string{
		"https://host.example/a.m3u8",
		"https://host.example/boom.m3u8",
		"https://host.example/b.m3u8",
	}

	summary, err := orch.RunBatch(context.Background(), urls, BatchOptions{Concurrency: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.CompletedCount)
	assert.Equal(t, 2, summary.SuccessCount)
	assert.Equal(t, 1, summary.FailedCount)
	assert.Empty(t, tempDirs(t, appCtx.Config.Download.OutDir))
}

func TestRunBatchDrainsQueueWhenCancelled(t *testing.T) {
	t.Parallel()

	appCtx := testAppContext(t, okFetcher("#EXTM3U\nseg.ts\n"), okRemuxer())
	orch := NewOrchestrator(appCtx)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	urls := []string{
		"https://host.example/1.m3u8",
		"https://host.example/2.m3u8",
		"https://host.example/3.m3u8",
		"https://host.example/4.m3u8",
		"https://host.example/5.m3u8",
	}

	sink := &recordingSink{}
	summary, err := orch.RunBatch(ctx, urls, BatchOptions{Concurrency: 2, Sink: sink})
	require.NoError(t, err)

	assert.Equal(t, 5, summary.CompletedCount)
	assert.Equal(t, 5, summary.FailedCount)
	assert.Equal(t, 0, summary.SuccessCount)

	for _, ev := range sink.all() {
		assert.Contains(t, ev.Result.Message, "cancelled")
	}

	assert.Empty(t, tempDirs(t, appCtx.Config.Download.OutDir))
}

// recordingStore archives results, rejecting writes on a done context the
// way a real database driver would.
type recordingStore struct {
	mu    sync.Mutex
	saved []domain.JobResult
}

func (s *recordingStore) SaveResult(ctx context.Context, batchID string, res domain.JobResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, res)
	return nil
}

func (s *recordingStore) all() []domain.JobResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.JobResult(nil), s.saved...)
}

func TestRunBatchArchivesResultsAfterCancellation(t *testing.T) {
	t.Parallel()

	appCtx := testAppContext(t, okFetcher("#EXTM3U\nseg.ts\n"), okRemuxer())
	st := &recordingStore{}
	appCtx.Store = st
	orch := NewOrchestrator(appCtx)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	urls := []string{
		"https://host.example/1.m3u8",
		"https://host.example/2.m3u8",
		"https://host.example/3.m3u8",
	}

	summary, err := orch.RunBatch(ctx, urls, BatchOptions{Concurrency: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.FailedCount)

	// The cancelled jobs' terminal results still reach the archive.
	saved := st.all()
	require.Len(t, saved, 3)
	for _, res := range saved {
		assert.False(t, res.Success)
		assert.Contains(t, res.Message, "cancelled")
	}
}

func TestRunBatchKeepsExplicitBatchID(t *testing.T) {
	t.Parallel()

	appCtx := testAppContext(t, okFetcher("#EXTM3U\nseg.ts\n"), okRemuxer())
	orch := NewOrchestrator(appCtx)

	sink := &recordingSink{}
	_, err := orch.RunBatch(context.Background(), []string{"https://host.example/a.m3u8"}, BatchOptions{
		BatchID: "batch-fixed",
		Sink:    sink,
	})
	require.NoError(t, err)

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, "batch-fixed", events[0].BatchID)
}
