// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package opd

import "fmt"

// AuthError indicates that no bearer token could be obtained from the auth
// endpoint. Authentication failure is fatal to a run.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "authentication failed: " + e.Reason
}

// RequestError indicates an API call that failed after exhausting retries,
// or returned a body that could not be decoded.
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed: %s: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// DownloadError indicates a file transfer that failed after exhausting
// retries. Dest names the destination file, not the full path.
type DownloadError struct {
	Dest string
	Err  error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download failed: %s: %v", e.Dest, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }
