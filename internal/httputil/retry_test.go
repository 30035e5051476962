// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Use a tiny base delay so tests finish quickly.
	RetryBaseDelay = 1 * time.Millisecond
}

// statusSequence answers with the given statuses in order, then 200.
func statusSequence(t *testing.T, calls *int32, bodies *[]string, statuses ...int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(calls, 1))
		if bodies != nil {
			b, _ := io.ReadAll(r.Body)
			*bodies = append(*bodies, string(b))
		}
		if n <= len(statuses) {
			w.WriteHeader(statuses[n-1])
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestRateLimitTransport(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		maxRetries int
		wantStatus int
		wantCalls  int32
	}{
		{name: "immediate success", wantStatus: http.StatusOK, wantCalls: 1},
		{name: "retries 429 then succeeds", statuses: []int{429, 429}, maxRetries: 5, wantStatus: http.StatusOK, wantCalls: 3},
		{name: "retries 503", statuses: []int{503}, maxRetries: 2, wantStatus: http.StatusOK, wantCalls: 2},
		{name: "exhausts retries", statuses: []int{429, 429, 429, 429, 429}, maxRetries: 3, wantStatus: http.StatusTooManyRequests, wantCalls: 4},
		{name: "zero retries passes 429 through", statuses: []int{429, 429}, wantStatus: http.StatusTooManyRequests, wantCalls: 1},
		{name: "negative retries passes 503 through", statuses: []int{503}, maxRetries: -1, wantStatus: http.StatusServiceUnavailable, wantCalls: 1},
		{name: "other errors pass through", statuses: []int{500}, maxRetries: 3, wantStatus: http.StatusInternalServerError, wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			ts := statusSequence(t, &calls, nil, tt.statuses...)

			client := NewClient(tt.maxRetries, nil)
			resp, err := client.Get(ts.URL)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestRateLimitTransportReplaysBody(t *testing.T) {
	var calls int32
	var bodies []string
	ts := statusSequence(t, &calls, &bodies, 429)

	client := NewClient(2, nil)
	resp, err := client.Post(ts.URL, "application/json", strings.NewReader(`{"prompt":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{`{"prompt":"hi"}`, `{"prompt":"hi"}`}, bodies)
}

func TestRateLimitTransportContextCancel(t *testing.T) {
	old := RetryBaseDelay
	RetryBaseDelay = time.Hour
	defer func() { RetryBaseDelay = old }()

	var calls int32
	ts := statusSequence(t, &calls, nil, 429, 429)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	_, err = NewClient(5, nil).Do(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), retryAfter(""))
	assert.Equal(t, time.Duration(0), retryAfter("soon"))
	assert.Equal(t, time.Duration(0), retryAfter("-3"))
	assert.Equal(t, 7*time.Second, retryAfter("7"))
	assert.Equal(t, maxRetryAfter, retryAfter("3600"))

	future := time.Now().Add(30 * time.Second).UTC().Format(http.TimeFormat)
	d := retryAfter(future)
	assert.Greater(t, d, 25*time.Second)
	assert.LessOrEqual(t, d, 30*time.Second)
}
