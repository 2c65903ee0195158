package remux

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kmorav/gom3u8/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeTool(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func testProfile(t *testing.T) domain.HeaderProfile {
	t.Helper()
	src, err := url.Parse("https://host.example/path/playlist.m3u8")
	require.NoError(t, err)
	return domain.NewHeaderProfile(domain.BaseHeaders("test-agent"), src)
}

func TestInvokeSuccess(t *testing.T) {
	t.Parallel()

	tool := &CLIFFmpeg{
		BinaryPath:            fakeTool(t, "#!/bin/sh\nexit 0\n"),
		NetworkTimeoutSeconds: 60,
	}

	res := tool.Invoke(context.Background(), "/tmp/playlist.m3u8", testProfile(t), "/tmp/out.mp4")
	assert.True(t, res.Success)
	assert.Empty(t, res.Diagnostic)
}

func TestInvokeFailureCarriesStderrTail(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("e", 600)
	script := "#!/bin/sh\nprintf '%s' '" + long + "' 1>&2\nexit 1\n"

	tool := &CLIFFmpeg{
		BinaryPath:            fakeTool(t, script),
		NetworkTimeoutSeconds: 60,
	}

	res := tool.Invoke(context.Background(), "/tmp/playlist.m3u8", testProfile(t), "/tmp/out.mp4")
	require.False(t, res.Success)

	// Exactly the last 500 characters, never more.
	assert.Len(t, res.Diagnostic, 500)
	assert.Equal(t, long[100:], res.Diagnostic)
}

func TestInvokeFailureShortStderrKeptWhole(t *testing.T) {
	t.Parallel()

	script := "#!/bin/sh\nprintf '%s' 'Invalid data found when processing input' 1>&2\nexit 1\n"

	tool := &CLIFFmpeg{
		BinaryPath:            fakeTool(t, script),
		NetworkTimeoutSeconds: 60,
	}

	res := tool.Invoke(context.Background(), "/tmp/playlist.m3u8", testProfile(t), "/tmp/out.mp4")
	require.False(t, res.Success)
	assert.Equal(t, "Invalid data found when processing input", res.Diagnostic)
}

func TestHeaderBlock(t *testing.T) {
	t.Parallel()

	block := HeaderBlock(testProfile(t))

	assert.Contains(t, block, "Referer: https://host.example/\r\n")
	assert.Contains(t, block, "Origin: https://host.example\r\n")
	assert.Contains(t, block, "User-Agent: test-agent\r\n")
	assert.True(t, strings.HasSuffix(block, "\r\n"))

	// Deterministic ordering: names appear sorted.
	lines := strings.Split(strings.TrimSuffix(block, "\r\n"), "\r\n")
	for i := 1; i < len(lines); i++ {
		assert.Less(t, lines[i-1], lines[i])
	}
}

func TestTail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", tail("abc", 5))
	assert.Equal(t, "cde", tail("abcde", 3))
	assert.Equal(t, "", tail("", 500))
}
