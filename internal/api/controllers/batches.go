package controllers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/kmorav/gom3u8/internal/app"
	"github.com/kmorav/gom3u8/internal/domain"
	"github.com/kmorav/gom3u8/internal/engine"
	"github.com/labstack/echo/v5"
	"github.com/segmentio/ksuid"
)

// recentMessages caps how many per-job messages a tracker keeps for polling.
const recentMessages = 20

// batchRetention is how long a finished batch stays pollable before its
// tracker is evicted. Without eviction a long-running server would
// accumulate one tracker per batch forever.
const batchRetention = time.Hour

// batchTracker is the ProgressSink behind the status endpoint. The engine's
// collector calls Progress once per completed job; handlers read snapshots.
type batchTracker struct {
	mu       sync.Mutex
	summary  domain.BatchSummary
	done     bool
	messages []string
}

func (t *batchTracker) Progress(ev domain.ProgressEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.summary = ev.Summary

	msg := ev.Result.URL + " - " + ev.Result.Message
	t.messages = append(t.messages, msg)
	if len(t.messages) > recentMessages {
		t.messages = t.messages[len(t.messages)-recentMessages:]
	}
}

func (t *batchTracker) finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = true
}

func (t *batchTracker) snapshot() (domain.BatchSummary, bool, []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	msgs := make([]string, len(t.messages))
	copy(msgs, t.messages)
	return t.summary, t.done, msgs
}

// BatchController exposes the engine over HTTP. It is a thin adapter: URLs
// in, progress snapshots out, no domain logic.
type BatchController struct {
	App    *app.Context
	Engine *engine.Orchestrator

	// baseCtx parents every batch started over the API so server shutdown
	// cancels in-flight jobs.
	baseCtx context.Context

	mu      sync.RWMutex
	batches map[string]*batchTracker

	retention time.Duration
}

func NewBatchController(baseCtx context.Context, appCtx *app.Context, eng *engine.Orchestrator) *BatchController {
	return &BatchController{
		App:       appCtx,
		Engine:    eng,
		baseCtx:   baseCtx,
		batches:   make(map[string]*batchTracker),
		retention: batchRetention,
	}
}

// finishBatch marks the tracker done and schedules its eviction.
func (ctrl *BatchController) finishBatch(id string, tracker *batchTracker) {
	tracker.finish()
	time.AfterFunc(ctrl.retention, func() {
		ctrl.mu.Lock()
		delete(ctrl.batches, id)
		ctrl.mu.Unlock()
	})
}

// Create starts a batch in the background and returns its id immediately.
func (ctrl *BatchController) Create(c *echo.Context) error {
	var req CreateBatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	if len(req.URLs) == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.ErrEmptyBatch.Error()})
	}

	id := ksuid.New().String()
	tracker := &batchTracker{summary: domain.BatchSummary{Total: len(req.URLs)}}

	ctrl.mu.Lock()
	ctrl.batches[id] = tracker
	ctrl.mu.Unlock()

	go func() {
		_, err := ctrl.Engine.RunBatch(ctrl.baseCtx, req.URLs, engine.BatchOptions{
			BatchID:     id,
			Concurrency: req.Concurrency,
			Sink:        tracker,
		})
		if err != nil {
			ctrl.App.Logger.Error("Batch %s aborted: %v", id, err)
		}
		ctrl.finishBatch(id, tracker)
	}()

	return c.JSON(http.StatusAccepted, CreateBatchResponse{ID: id, Total: len(req.URLs)})
}

// Status returns the running summary and recent per-job messages.
func (ctrl *BatchController) Status(c *echo.Context) error {
	id := c.Param("id")

	ctrl.mu.RLock()
	tracker, ok := ctrl.batches[id]
	ctrl.mu.RUnlock()

	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown batch id"})
	}

	summary, done, messages := tracker.snapshot()
	return c.JSON(http.StatusOK, BatchStatusResponse{
		ID:       id,
		Done:     done,
		Summary:  summary,
		Messages: messages,
	})
}
