// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package opd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/opd-fetch/internal/httputil"
)

// DownloadFile streams the referenced file to destPath under bearer auth and
// the shared retry policy. If destPath already exists and is non-empty the
// call is a no-op and reports skipped=true, so re-running a batch is safe.
// The body is written to a temp file and renamed into place on success.
//
// The reference is either a bare file id (resolved against the getfile
// endpoint) or a full download URL, which is fetched as-is.
func (c *Client) DownloadFile(ctx context.Context, ref, destPath string) (skipped bool, err error) {
	if fi, statErr := os.Stat(destPath); statErr == nil && fi.Size() > 0 {
		return true, nil
	}

	fileURL := ref
	if !strings.HasPrefix(ref, "http") {
		fileURL = c.BaseURL + "/getfile/" + ref
	}

	req, err := c.newRequest(ctx, fileURL)
	if err != nil {
		return false, &DownloadError{Dest: filepath.Base(destPath), Err: err}
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTPClient, req, c.MaxAttempts)
	if err != nil {
		return false, &DownloadError{Dest: filepath.Base(destPath), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return false, &DownloadError{Dest: filepath.Base(destPath), Err: fmt.Errorf("HTTP %d from %s", resp.StatusCode, fileURL)}
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".opd-*.tmp")
	if err != nil {
		return false, &DownloadError{Dest: filepath.Base(destPath), Err: fmt.Errorf("creating temp file: %w", err)}
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return false, &DownloadError{Dest: filepath.Base(destPath), Err: fmt.Errorf("writing download: %w", copyErr)}
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return false, &DownloadError{Dest: filepath.Base(destPath), Err: fmt.Errorf("closing temp file: %w", closeErr)}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return false, &DownloadError{Dest: filepath.Base(destPath), Err: fmt.Errorf("renaming temp file: %w", err)}
	}
	return false, nil
}
