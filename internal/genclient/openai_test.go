// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genclient

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/paperforge/pkg/types"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAI {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	o, err := NewOpenAI(types.AIConfig{
		Provider: types.ProviderOpenAI,
		APIKey:   "sk-test",
		BaseURL:  ts.URL + "/",
	}, zap.NewNop())
	require.NoError(t, err)
	return o
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI(types.AIConfig{Provider: types.ProviderOpenAI}, nil)
	require.Error(t, err)
}

func TestOpenAIOutline(t *testing.T) {
	var gotPath, gotBody string
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotPath, gotBody = r.URL.Path, string(b)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o",
		  "choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"title\":\"T\"}"}}]}`)
	})

	resp, err := o.Outline(context.Background(), "tides")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"T"}`, resp.Text)
	assert.Empty(t, resp.Citations)
	assert.Equal(t, "/chat/completions", gotPath)
	assert.Contains(t, gotBody, "tides")
	assert.Contains(t, gotBody, types.DefaultOpenAITextModel)
}

func TestOpenAIEmptyChoices(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o","choices":[]}`)
	})

	_, err := o.SectionContent(context.Background(), "P", "S", "A")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAISectionImage(t *testing.T) {
	var gotPath string
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"created":1,"data":[{"b64_json":%q}]}`, base64.StdEncoding.EncodeToString([]byte("IMG")))
	})

	img, err := o.SectionImage(context.Background(), "a tide pool")
	require.NoError(t, err)
	assert.Equal(t, "/images/generations", gotPath)
	assert.Equal(t, []byte("IMG"), img.Data)
	assert.Equal(t, "image/png", img.MIMEType)
}

func TestOpenAIRejectionIsAdapterError(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"content policy","type":"invalid_request_error"}}`)
	})

	_, err := o.SectionImage(context.Background(), "x")
	var ae *Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, OpImage, ae.Op)
}

func TestOpenAIRateLimitIsNotRetried(t *testing.T) {
	var calls int32
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"slow down","type":"rate_limit_exceeded"}}`)
	})

	_, err := o.Outline(context.Background(), "Tides")
	var ae *Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNewSelectsProvider(t *testing.T) {
	c, err := New(context.Background(), types.AIConfig{Provider: types.ProviderOpenAI, APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, c)

	_, err = New(context.Background(), types.AIConfig{Provider: "mystery"}, nil)
	assert.ErrorContains(t, err, "unknown provider")
}
