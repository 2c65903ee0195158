package playlist

import "fmt"

// FetchError is returned after every fetch attempt has been exhausted.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch playlist %s after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FormatError indicates the fetched content is not a valid playlist.
type FormatError struct {
	URL string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("content from %s is not a valid m3u8 playlist (missing #EXTM3U marker)", e.URL)
}
