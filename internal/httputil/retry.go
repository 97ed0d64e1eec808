// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the retrying HTTP helper used by page fetching.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RetryBaseDelay is the backoff unit used when RetryOptions.BaseDelay is
// zero. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxAttempts = 3

// RetryOptions controls DoWithRetry.
type RetryOptions struct {
	// MaxAttempts is the total number of requests made (default 3).
	MaxAttempts int

	// BaseDelay is the backoff unit: attempt n waits n*BaseDelay.
	BaseDelay time.Duration

	// UserAgents are rotated per attempt. Empty leaves the request's header alone.
	UserAgents []string
}

// Retryable reports whether a response status should be retried: 403
// (IMFDB answers bot-looking clients with it), 429, and any 5xx.
func Retryable(status int) bool {
	return status == http.StatusForbidden ||
		status == http.StatusTooManyRequests ||
		status >= http.StatusInternalServerError
}

// DoWithRetry executes req, retrying retryable statuses and transport errors
// with linear backoff (BaseDelay, 2*BaseDelay, ...) and a rotated User-Agent
// on every attempt.
//
// On each retried response the body is drained and closed before sleeping.
// If the context is cancelled the function returns ctx.Err(). When the last
// attempt still gets a retryable status, that response is returned so the
// caller can inspect it; when it fails at the transport level, the last
// error is returned.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, opts RetryOptions) (*http.Response, error) {
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	base := opts.BaseDelay
	if base <= 0 {
		base = RetryBaseDelay
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * base):
			}
		}

		r := req.Clone(ctx)
		if len(opts.UserAgents) > 0 {
			r.Header.Set("User-Agent", opts.UserAgents[attempt%len(opts.UserAgents)])
		}

		resp, err := client.Do(r)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if !Retryable(resp.StatusCode) || attempt == attempts-1 {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
