package social

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github-achievement-miner/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastRetries keeps backoff out of test runtime.
var fastRetries = []common.Option{
	common.WithMaxRetries(3),
	common.WithInitialDelay(time.Millisecond),
}

func TestPublish_SendsTextPayload(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPublisher(srv.URL)
	err := p.Publish(context.Background(), "Shipped a fix to octo/hello 🎉")
	require.NoError(t, err)

	var req publishRequest
	require.NoError(t, json.Unmarshal(gotBody, &req))
	assert.Equal(t, "Shipped a fix to octo/hello 🎉", req.Text)
}

func TestPublish_RetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPublisher(srv.URL)
	p.client = srv.Client()
	p.retryOpts = fastRetries

	err := p.Publish(context.Background(), "retry me")
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestPublish_EmptyWebhookFails(t *testing.T) {
	p := NewPublisher("")
	err := p.Publish(context.Background(), "anything")
	assert.Error(t, err)
}

func TestPublish_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewPublisher(srv.URL)
	p.retryOpts = fastRetries

	err := p.Publish(context.Background(), "nope")
	assert.Error(t, err)
}
