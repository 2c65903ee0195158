package engine

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/kmorav/gom3u8/internal/app"
	"github.com/kmorav/gom3u8/internal/domain"
	"github.com/kmorav/gom3u8/internal/playlist"
	"github.com/segmentio/ksuid"
)

// DownloadJob processes one source URL end to end: fetch the playlist,
// normalize it, stage it in a private workspace and hand it to the remux
// tool. The workspace is exclusive to the job and removed on every exit
// path, including panics.
type DownloadJob struct {
	ID         string
	SourceURL  string
	OutputFile string
	State      domain.JobState

	app    *app.Context
	policy domain.RetryPolicy
}

func NewDownloadJob(appCtx *app.Context, rawURL string, policy domain.RetryPolicy) *DownloadJob {
	return &DownloadJob{
		ID:        ksuid.New().String(),
		SourceURL: rawURL,
		State:     domain.JobCreated,
		app:       appCtx,
		policy:    policy.Normalize(),
	}
}

// Run executes the job pipeline and always returns exactly one terminal
// JobResult. Faults never propagate: a panic anywhere inside the pipeline is
// converted into a failed result at this boundary so sibling jobs keep
// running.
func (j *DownloadJob) Run(ctx context.Context) (res domain.JobResult) {
	res = domain.JobResult{
		JobID:     j.ID,
		URL:       j.SourceURL,
		StartedAt: time.Now(),
	}

	defer func() {
		if r := recover(); r != nil {
			j.State = domain.JobFailed
			res.Success = false
			res.Message = fmt.Sprintf("internal fault: %v", r)
		}
		res.FinishedAt = time.Now()
	}()

	src, err := url.Parse(j.SourceURL)
	if err != nil || (src.Scheme != "http" && src.Scheme != "https") {
		return j.fail(&res, fmt.Sprintf("not an absolute http(s) url: %s", j.SourceURL))
	}

	if j.OutputFile == "" {
		j.OutputFile = playlist.OutputName(src)
	}

	workspace := filepath.Join(j.app.Config.Download.OutDir, "temp_"+j.ID)
	if err := os.MkdirAll(workspace, 0755); err != nil {
		return j.fail(&res, fmt.Sprintf("failed to create workspace: %v", err))
	}
	defer os.RemoveAll(workspace)
	j.State = domain.JobWorkspaceAcquired

	// Fresh immutable profile per job: Referer/Origin come from this job's
	// URL and are never visible to siblings.
	profile := domain.NewHeaderProfile(domain.BaseHeaders(j.app.Config.Fetch.UserAgent), src)

	raw, err := j.app.Fetcher.Fetch(ctx, j.SourceURL, profile, j.policy)
	if err != nil {
		return j.fail(&res, err.Error())
	}
	j.State = domain.JobPlaylistFetched

	normalized, err := playlist.Normalize(raw, src)
	if err != nil {
		return j.fail(&res, err.Error())
	}
	j.State = domain.JobPlaylistValidated

	playlistPath := filepath.Join(workspace, "playlist.m3u8")
	if err := os.WriteFile(playlistPath, normalized, 0644); err != nil {
		return j.fail(&res, fmt.Sprintf("failed to stage playlist: %v", err))
	}

	outputPath := filepath.Join(j.app.Config.Download.OutDir, j.OutputFile)
	result := j.app.Remuxer.Invoke(ctx, playlistPath, profile, outputPath)
	if !result.Success {
		return j.fail(&res, fmt.Sprintf("remux failed: %s", result.Diagnostic))
	}
	j.State = domain.JobRemuxed

	j.State = domain.JobCompleted
	res.Success = true
	res.OutputFile = j.OutputFile
	res.Message = fmt.Sprintf("converted: %s", j.OutputFile)
	return res
}

func (j *DownloadJob) fail(res *domain.JobResult, msg string) domain.JobResult {
	j.State = domain.JobFailed
	res.Success = false
	res.Message = msg
	return *res
}
