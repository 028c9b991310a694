// Package fetcher downloads zone bundles (shapefile archives) from HTTP and
// FTP hosts with per-host rate limiting and retry.
package fetcher

import (
	"context"
	"io"
)

// Fetcher downloads remote zone data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path.
	// Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}
