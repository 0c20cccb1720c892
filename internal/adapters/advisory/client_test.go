package advisory_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/betagent/internal/adapters/advisory"
)

func newClient(t *testing.T, url string) *advisory.Client {
	t.Helper()
	c, err := advisory.NewClient(advisory.Config{BaseURL: url + "/v1/", APIKey: "sk-test", Model: "test-model", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func TestGenerate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body["model"])
		msgs, _ := body["messages"].([]any)
		if assert.Len(t, msgs, 1) {
			m := msgs[0].(map[string]any)
			assert.Equal(t, "user", m["role"])
			assert.Equal(t, "hello prompt", m["content"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Take it."}}]}`))
	}))
	defer srv.Close()

	text, err := newClient(t, srv.URL).Generate(context.Background(), "hello prompt")
	require.NoError(t, err)
	assert.Equal(t, "Take it.", text)
}

func TestGenerate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).Generate(context.Background(), "p")
	assert.ErrorContains(t, err, "no choices")
}

func TestGenerate_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).Generate(context.Background(), "p")
	assert.ErrorContains(t, err, "client error 401")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGenerate_RetriesServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	text, err := newClient(t, srv.URL).Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGenerate_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := newClient(t, srv.URL).Generate(ctx, "p")
	assert.Error(t, err)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := advisory.NewClient(advisory.Config{Model: "m"})
	assert.Error(t, err)

	_, err = advisory.NewClient(advisory.Config{BaseURL: "http://x"})
	assert.Error(t, err)
}
