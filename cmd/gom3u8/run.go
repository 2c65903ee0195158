package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kmorav/gom3u8/internal/domain"
	"github.com/kmorav/gom3u8/internal/engine"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		inputPath   string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "run [urls...]",
		Short: "Download and remux a batch of m3u8 urls",
		RunE: func(cmd *cobra.Command, args []string) error {
			urls, err := collectURLs(args, inputPath)
			if err != nil {
				return err
			}
			if len(urls) == 0 {
				return fmt.Errorf("no m3u8 urls provided (pass them as arguments or via --input)")
			}

			appCtx, err := setup()
			if err != nil {
				return err
			}

			orch, st, err := wireEngine(appCtx)
			if err != nil {
				return err
			}
			defer st.Close()

			// Ctrl+C cancels the batch; in-flight jobs fail and release
			// their workspaces.
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf("Starting batch: %d url(s)\n", len(urls))

			start := time.Now()
			summary, err := orch.RunBatch(ctx, urls, engine.BatchOptions{
				Concurrency: concurrency,
				Sink:        &cliProgress{},
			})
			if err != nil {
				return err
			}
			fmt.Println()

			elapsed := time.Since(start).Truncate(time.Second)
			rate := float64(summary.SuccessCount) / float64(summary.Total) * 100
			fmt.Printf("Batch finished in %s | success: %d, failed: %d (%.1f%%)\n",
				elapsed, summary.SuccessCount, summary.FailedCount, rate)
			fmt.Printf("Output directory: %s\n", appCtx.Config.Download.OutDir)

			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "file with one m3u8 url per line")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "n", 0, "worker pool size (default from config)")

	return cmd
}

// collectURLs merges command-line arguments and an optional input file.
// Arguments may be comma-separated; file lines starting with # are skipped.
func collectURLs(args []string, inputPath string) ([]string, error) {
	var urls []string

	for _, arg := range args {
		for _, u := range strings.Split(arg, ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
	}

	if inputPath != "" {
		f, err := os.Open(inputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open url list: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			urls = append(urls, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read url list: %w", err)
		}
	}

	return urls, nil
}

// cliProgress renders a single-line progress bar in completion order.
type cliProgress struct{}

func (p *cliProgress) Progress(ev domain.ProgressEvent) {
	s := ev.Summary

	percent := float64(s.CompletedCount) / float64(s.Total) * 100

	// Progress Bar go brrr [====>   ]
	const barWidth = 20
	completedWidth := int(percent / 100 * barWidth)
	bar := strings.Repeat("=", completedWidth)
	if completedWidth < barWidth {
		bar += ">" + strings.Repeat(" ", barWidth-completedWidth-1)
	}

	fmt.Printf("\r[%s] %5.1f%% | %d/%d | ok: %d, failed: %d      ",
		bar, percent, s.CompletedCount, s.Total, s.SuccessCount, s.FailedCount)
}
