// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the shared bounded-retry HTTP helper.
package httputil

import (
	"context"
	"io"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration of the linear backoff between
// attempts. Tests override this to avoid real sleeps.
var RetryBaseDelay = 600 * time.Millisecond

const defaultMaxAttempts = 3

// RetryableStatus reports whether a response status code is worth retrying.
func RetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// DoWithRetry executes an HTTP request up to maxAttempts times, retrying on
// transport errors and retryable status codes with linear backoff
// (RetryBaseDelay x attempt number).
//
// When maxAttempts is 0 the default (3) is used. Before each retry the
// response body is drained and closed. If the context is cancelled during a
// backoff wait the function returns ctx.Err(). After the final attempt a
// retryable response is returned as-is so the caller can inspect it; a
// transport error is returned as an error.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxAttempts int) (*http.Response, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	for attempt := 1; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err == nil {
			if !RetryableStatus(resp.StatusCode) || attempt >= maxAttempts {
				return resp, nil
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		} else if attempt >= maxAttempts {
			return nil, err
		}

		backoff := time.Duration(attempt) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
