package mods

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/steviee/cdl/internal/curseforge"
)

// DefaultDownloadTimeout bounds a single file download.
const DefaultDownloadTimeout = 5 * time.Minute

// partSuffix marks a file that is still being written.
const partSuffix = ".part"

// Fetcher downloads files over HTTP onto a filesystem.
// Redirects are followed by the HTTP client.
type Fetcher struct {
	httpClient *http.Client
	fs         afero.Fs
	userAgent  string
}

// NewFetcher creates a fetcher writing to fs. A nil fs means the OS filesystem.
func NewFetcher(fs afero.Fs) *Fetcher {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: DefaultDownloadTimeout},
		fs:         fs,
		userAgent:  curseforge.UserAgent,
	}
}

// Fetch downloads url to destPath and returns the number of bytes written.
// The body is copied byte for byte into a temporary sibling file which is
// renamed onto destPath once complete, so destPath never holds a partial file.
func (f *Fetcher) Fetch(ctx context.Context, url, destPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download: %w: %w", curseforge.ErrNetwork, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("download: %w: unexpected status: %d", curseforge.ErrNetwork, resp.StatusCode)
	}

	if err := f.fs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return 0, fmt.Errorf("create directory: %w: %w", ErrFileSystem, err)
	}

	tmpPath := destPath + partSuffix
	out, err := f.fs.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create file: %w: %w", ErrFileSystem, err)
	}

	success := false
	defer func() {
		if !success {
			_ = out.Close()
			_ = f.fs.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return n, fmt.Errorf("write file: %w", ctxErr)
		}
		return n, fmt.Errorf("write file: %w: %w", curseforge.ErrNetwork, err)
	}

	if err := out.Close(); err != nil {
		return n, fmt.Errorf("close file: %w: %w", ErrFileSystem, err)
	}

	if err := f.fs.Rename(tmpPath, destPath); err != nil {
		return n, fmt.Errorf("rename file: %w: %w", ErrFileSystem, err)
	}
	success = true

	slog.Debug("file downloaded",
		"url", url,
		"destination", destPath,
		"bytes", n)

	return n, nil
}
