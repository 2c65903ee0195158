package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kmorav/gom3u8/internal/app"
	"github.com/kmorav/gom3u8/internal/domain"
	"github.com/kmorav/gom3u8/internal/infra/config"
	"github.com/kmorav/gom3u8/internal/infra/logger"
	"github.com/kmorav/gom3u8/internal/remux"
	"github.com/stretchr/testify/require"
)

// fetcherFunc adapts a function to app.Fetcher.
type fetcherFunc func(ctx context.Context, rawURL string, profile domain.HeaderProfile, policy domain.RetryPolicy) ([]byte, error)

func (f fetcherFunc) Fetch(ctx context.Context, rawURL string, profile domain.HeaderProfile, policy domain.RetryPolicy) ([]byte, error) {
	return f(ctx, rawURL, profile, policy)
}

// remuxerFunc adapts a function to app.Remuxer.
type remuxerFunc func(ctx context.Context, playlistPath string, profile domain.HeaderProfile, outputPath string) remux.Result

func (f remuxerFunc) Invoke(ctx context.Context, playlistPath string, profile domain.HeaderProfile, outputPath string) remux.Result {
	return f(ctx, playlistPath, profile, outputPath)
}

func okFetcher(body string) fetcherFunc {
	return func(ctx context.Context, rawURL string, profile domain.HeaderProfile, policy domain.RetryPolicy) ([]byte, error) {
		return []byte(body), nil
	}
}

func okRemuxer() remuxerFunc {
	return func(ctx context.Context, playlistPath string, profile domain.HeaderProfile, outputPath string) remux.Result {
		return remux.Result{Success: true}
	}
}

func testAppContext(t *testing.T, f app.Fetcher, r app.Remuxer) *app.Context {
	t.Helper()

	log, err := logger.New(filepath.Join(t.TempDir(), "test.log"), logger.LevelError, false)
	require.NoError(t, err)

	cfg := &config.Config{
		Download: config.DownloadConfig{OutDir: t.TempDir(), Concurrency: 2},
		Fetch:    config.FetchConfig{TimeoutSeconds: 5, RetryCount: 1},
	}

	appCtx := app.NewContext(cfg, log)
	appCtx.Fetcher = f
	appCtx.Remuxer = r
	return appCtx
}
