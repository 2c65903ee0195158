package app

import (
	"context"

	"github.com/kmorav/gom3u8/internal/domain"
	"github.com/kmorav/gom3u8/internal/infra/config"
	"github.com/kmorav/gom3u8/internal/infra/logger"
	"github.com/kmorav/gom3u8/internal/remux"
)

type Fetcher interface {
	// This allows the engine to fetch playlists without importing the playlist package
	Fetch(ctx context.Context, rawURL string, profile domain.HeaderProfile, policy domain.RetryPolicy) ([]byte, error)
}

type Remuxer interface {
	// This allows the engine to run the remux tool without importing its implementation
	Invoke(ctx context.Context, playlistPath string, profile domain.HeaderProfile, outputPath string) remux.Result
}

type Store interface {
	// SaveResult archives a terminal JobResult. A nil Store disables history.
	SaveResult(ctx context.Context, batchID string, res domain.JobResult) error
}

// Context holds the core environment and shared resources for gom3u8.
// It acts as the "Single Source of Truth" for the application state.
type Context struct {
	Config *config.Config
	Logger *logger.Logger

	// High-level interfaces for the engine to use
	Fetcher Fetcher
	Remuxer Remuxer
	Store   Store
}

// NewContext initializes the base environment.
func NewContext(cfg *config.Config, log *logger.Logger) *Context {
	return &Context{
		Config: cfg,
		Logger: log,
	}
}
