package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xzayogn/jobchat/internal/job"
)

const (
	// UserAgent is sent on every upstream request.
	UserAgent = "jobchat/1.0 (+https://github.com/xzayogn/jobchat)"

	// DefaultTimeout bounds a single provider HTTP round-trip.
	DefaultTimeout = 10 * time.Second
)

// Client is the uniform capability exposed by every job-listing provider.
// Implementations return an error for any upstream failure (network,
// timeout, non-2xx, malformed body); the caller records it and carries on,
// so an error here never fails a whole aggregation pass.
type Client interface {
	Name() string
	Search(ctx context.Context, keywords, location, jobType string) ([]job.Listing, error)
}

// NewHTTPClient returns the http.Client used by provider implementations.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// Do sends the request with the shared User-Agent and enforces a 2xx
// status, draining and closing the body on failure.
func Do(hc *http.Client, req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", UserAgent)

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	return resp, nil
}

// TodayISO is the posted-date default when a provider omits the field.
func TodayISO() string {
	return time.Now().Format("2006-01-02")
}
