// Package fetcher downloads SEC resources over HTTP with per-host rate
// limits and retries.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and atomically replaces the file at path.
	// Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Text returns the standard reason phrase for the status.
func (e *StatusError) Text() string {
	return http.StatusText(e.StatusCode)
}
