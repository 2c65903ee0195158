package playlist

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kmorav/gom3u8/internal/domain"
)

// Fetcher retrieves playlist documents over HTTP with bounded retry.
// Persistence is the job's responsibility; Fetch never touches disk.
type Fetcher struct {
	client *http.Client
}

// NewFetcher builds a fetcher with a per-attempt timeout. insecureSkipVerify
// disables certificate validation and must be an explicit opt-in; callers are
// expected to log the decision.
func NewFetcher(timeout time.Duration, insecureSkipVerify bool) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Fetch performs an HTTP GET with the profile headers. Transport failures,
// timeouts and non-2xx statuses all count as failed attempts; after the last
// attempt the final cause is wrapped in a *FetchError. The inter-attempt
// delay is interruptible by ctx.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, profile domain.HeaderProfile, policy domain.RetryPolicy) ([]byte, error) {
	policy = policy.Normalize()

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		data, err := f.get(ctx, rawURL, profile)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if attempt == policy.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, &FetchError{URL: rawURL, Attempts: attempt, Err: ctx.Err()}
		case <-time.After(policy.Delay):
		}
	}

	return nil, &FetchError{URL: rawURL, Attempts: policy.MaxAttempts, Err: lastErr}
}

func (f *Fetcher) get(ctx context.Context, rawURL string, profile domain.HeaderProfile) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	for name, value := range profile.Map() {
		// Setting Accept-Encoding by hand disables the transport's
		// transparent gzip decompression; let it negotiate. The profile
		// keeps the header for the remux tool's header block.
		if http.CanonicalHeaderKey(name) == "Accept-Encoding" {
			continue
		}
		req.Header.Set(name, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}
