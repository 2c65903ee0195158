// Package playlist fetches m3u8 documents and rewrites them into a
// self-contained absolute form that an external remux tool can consume
// without knowing the playlist's origin.
package playlist

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// formatMarker must appear within the first markerWindow bytes.
const (
	formatMarker = "#EXTM3U"
	markerWindow = 100
)

var m3u8BaseName = regexp.MustCompile(`([^/]+)\.m3u8`)

// Normalize validates the format marker and rewrites every non-tag,
// non-empty line that is not already an absolute URL into one, resolved
// against source per RFC 3986. Pure and idempotent: feeding the output back
// in yields the same bytes.
func Normalize(raw []byte, source *url.URL) ([]byte, error) {
	head := raw
	if len(head) > markerWindow {
		head = head[:markerWindow]
	}
	if !bytes.Contains(head, []byte(formatMarker)) {
		return nil, &FormatError{URL: source.String()}
	}

	lines := strings.Split(string(raw), "\n")
	out := make([]string, 0, len(lines))

	for _, l := range lines {
		line := strings.TrimSpace(l)
		if line == "" || strings.HasPrefix(line, "#") {
			out = append(out, line)
			continue
		}

		ref, err := url.Parse(line)
		if err != nil || ref.IsAbs() {
			// Already absolute (or unparseable: pass through untouched so
			// the tool surfaces the real problem).
			out = append(out, line)
			continue
		}

		out = append(out, source.ResolveReference(ref).String())
	}

	return []byte(strings.Join(out, "\n")), nil
}

// OutputName derives the output file name for a playlist URL: the playlist's
// own base name when a .m3u8 segment is present in the path, otherwise a
// nanosecond-timestamped name so concurrent jobs never collide.
func OutputName(source *url.URL) string {
	if m := m3u8BaseName.FindStringSubmatch(source.Path); m != nil {
		return m[1] + ".mp4"
	}
	return fmt.Sprintf("video_%d.mp4", time.Now().UnixNano())
}
