// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP transport shared by the model adapters.
package httputil

import (
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// rate-limited responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// maxRetryAfter caps how long a server-supplied Retry-After can stall a call.
const maxRetryAfter = time.Minute

// RateLimitTransport logs requests answered with 429 Too Many Requests or
// 503 Service Unavailable and, when MaxRetries is positive, retries them.
// The delay honours Retry-After when the server sends one and otherwise
// doubles from RetryBaseDelay each attempt.
//
// Only requests whose body can be replayed are retried. After exhausting
// retries the last response is returned so the SDK can report it.
type RateLimitTransport struct {
	// Base is the underlying transport (default http.DefaultTransport).
	Base http.RoundTripper

	// MaxRetries is the number of extra attempts. Zero disables retries.
	MaxRetries int

	Logger *zap.Logger
}

// NewClient returns an http.Client using a RateLimitTransport.
func NewClient(maxRetries int, logger *zap.Logger) *http.Client {
	return &http.Client{Transport: &RateLimitTransport{MaxRetries: maxRetries, Logger: logger}}
}

// RoundTrip implements http.RoundTripper.
func (t *RateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	maxRetries := max(t.MaxRetries, 0)
	log := t.Logger
	if log == nil {
		log = zap.NewNop()
	}
	replayable := req.Body == nil || req.Body == http.NoBody || req.GetBody != nil

	for attempt := 0; ; attempt++ {
		r := req
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			r = req.Clone(req.Context())
			r.Body = body
		}

		resp, err := base.RoundTrip(r)
		if err != nil {
			return nil, err
		}
		if !retryable(resp.StatusCode) {
			return resp, nil
		}
		if attempt >= maxRetries || !replayable {
			log.Warn("rate limited",
				zap.Int("status", resp.StatusCode),
				zap.String("retry_after", resp.Header.Get("Retry-After")),
				zap.Int("attempts", attempt+1))
			return resp, nil
		}

		backoff := retryAfter(resp.Header.Get("Retry-After"))
		if backoff == 0 {
			backoff = time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		log.Debug("rate limited, retrying",
			zap.Int("status", resp.StatusCode),
			zap.Duration("backoff", backoff),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries))

		timer := time.NewTimer(backoff)
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP
// date. It returns 0 when the header is absent or unusable.
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	var d time.Duration
	if secs, err := strconv.Atoi(v); err == nil {
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(v); err == nil {
		d = time.Until(at)
	}
	if d <= 0 {
		return 0
	}
	return min(d, maxRetryAfter)
}
