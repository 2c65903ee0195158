// Package remux drives the external ffmpeg binary to repackage a normalized
// playlist into a single MP4 without re-encoding. Segment fetching, retry and
// decryption are entirely ffmpeg's job: it dereferences every absolute URL in
// the playlist itself, using the forwarded headers.
package remux

import (
	"bytes"
	"context"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/kmorav/gom3u8/internal/domain"
)

// maxDiagnostic bounds the stderr tail carried on failure; ffmpeg is verbose
// and the full stream would bloat logs and the history store.
const maxDiagnostic = 500

// Result is the outcome of one remux invocation.
type Result struct {
	Success    bool
	Diagnostic string
}

// CLIFFmpeg invokes the system ffmpeg binary.
type CLIFFmpeg struct {
	BinaryPath string

	// NetworkTimeoutSeconds is forwarded via -timeout for segment fetches.
	NetworkTimeoutSeconds int
}

// NewCLIFFmpeg locates ffmpeg in PATH.
func NewCLIFFmpeg(networkTimeoutSeconds int) (*CLIFFmpeg, error) {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, err
	}
	if networkTimeoutSeconds <= 0 {
		networkTimeoutSeconds = 60
	}
	return &CLIFFmpeg{BinaryPath: path, NetworkTimeoutSeconds: networkTimeoutSeconds}, nil
}

// Invoke runs ffmpeg to completion against the normalized playlist:
// stream copy (no re-encode), aac_adtstoasc bitstream filter to repair
// ADTS framing on the audio track, unconditional overwrite, forwarded
// headers and user agent. Exit code 0 maps to success; anything else
// carries the stderr tail as diagnostic.
func (c *CLIFFmpeg) Invoke(ctx context.Context, playlistPath string, profile domain.HeaderProfile, outputPath string) Result {
	args := []string{
		"-headers", HeaderBlock(profile),
		"-i", playlistPath,
		"-c", "copy",
		"-bsf:a", "aac_adtstoasc",
		"-y",
		"-timeout", strconv.Itoa(c.NetworkTimeoutSeconds),
		"-user_agent", profile.UserAgent(),
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.BinaryPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Result{Success: false, Diagnostic: tail(stderr.String(), maxDiagnostic)}
	}
	return Result{Success: true}
}

// HeaderBlock serializes a profile into the CRLF-joined "Name: Value" block
// ffmpeg expects for -headers. Names are sorted so the argv is deterministic.
func HeaderBlock(profile domain.HeaderProfile) string {
	headers := profile.Map()

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(headers[name])
		b.WriteString("\r\n")
	}
	return b.String()
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
