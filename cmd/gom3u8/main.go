package main

import (
	"fmt"
	"os"

	"github.com/kmorav/gom3u8/internal/app"
	"github.com/kmorav/gom3u8/internal/engine"
	"github.com/kmorav/gom3u8/internal/infra/config"
	"github.com/kmorav/gom3u8/internal/infra/logger"
	"github.com/kmorav/gom3u8/internal/platform"
	"github.com/kmorav/gom3u8/internal/playlist"
	"github.com/kmorav/gom3u8/internal/remux"
	"github.com/kmorav/gom3u8/internal/store"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	root := &cobra.Command{
		Use:           "gom3u8",
		Short:         "Batch m3u8 playlist downloader (remuxes to MP4 via ffmpeg)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config.yaml")

	root.AddCommand(newRunCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newHistoryCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads config and opens the log file.
func setup() (*app.Context, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Path, logger.ParseLevel(cfg.Log.Level), cfg.Log.IncludeStdout)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return app.NewContext(cfg, log), nil
}

// wireEngine validates external dependencies and plugs the concrete fetcher,
// remuxer and history store into the app context.
func wireEngine(appCtx *app.Context) (*engine.Orchestrator, *store.PersistentStore, error) {
	if err := platform.ValidateDependencies(); err != nil {
		return nil, nil, err
	}

	cfg := appCtx.Config

	if cfg.Fetch.InsecureSkipVerify {
		appCtx.Logger.Warn("TLS certificate validation is DISABLED for playlist fetches (fetch.insecure_skip_verify)")
	}
	appCtx.Fetcher = playlist.NewFetcher(cfg.Fetch.Timeout(), cfg.Fetch.InsecureSkipVerify)

	remuxer, err := remux.NewCLIFFmpeg(cfg.Fetch.TimeoutSeconds)
	if err != nil {
		return nil, nil, err
	}
	appCtx.Remuxer = remuxer

	st, err := store.NewPersistentStore(cfg.Store.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	appCtx.Store = st

	if err := os.MkdirAll(cfg.Download.OutDir, 0755); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return engine.NewOrchestrator(appCtx), st, nil
}
