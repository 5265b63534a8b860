package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwgray1010/unsaid/pkg/types"
)

func TestClient_Disabled(t *testing.T) {
	client := NewClient(Config{})

	assert.False(t, client.Enabled())

	_, err := client.Enhance(context.Background(), Request{Text: "hello"})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestClient_Enhance(t *testing.T) {
	var received Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(enhancementEnvelope{Suggestions: []Suggestion{
			{Text: "I feel unheard when this happens. Can we talk?", Priority: "high"},
		}})
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, APIKey: "test-key"})

	suggestions, err := client.Enhance(context.Background(), Request{
		Text:            "you never listen",
		AttachmentStyle: types.StyleAnxious,
		ToneStatus:      types.ToneAlert,
	})
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "I feel unheard when this happens. Can we talk?", suggestions[0].Text)
	assert.Equal(t, "you never listen", received.Text)
	assert.Equal(t, types.StyleAnxious, received.AttachmentStyle)
}

func TestClient_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"suggestions": [`))
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL})

	_, err := client.Enhance(context.Background(), Request{Text: "hello"})
	assert.Error(t, err)
}

func TestClient_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL})

	_, err := client.Enhance(context.Background(), Request{Text: "hello"})
	assert.Error(t, err)
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, Timeout: 20 * time.Millisecond})

	_, err := client.Enhance(context.Background(), Request{Text: "hello"})
	assert.Error(t, err)
}

func TestClient_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(enhancementEnvelope{Suggestions: []Suggestion{{Text: "ok"}}})
	}))
	defer server.Close()

	// Burst of 1, so the second immediate call must be rejected.
	client := NewClient(Config{Endpoint: server.URL, RequestsPerMinute: 1})

	_, err := client.Enhance(context.Background(), Request{Text: "first"})
	require.NoError(t, err)

	_, err = client.Enhance(context.Background(), Request{Text: "second"})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL})

	for i := 0; i < 3; i++ {
		_, err := client.Enhance(context.Background(), Request{Text: "hello"})
		require.Error(t, err)
	}
	assert.Equal(t, 3, calls)

	// Circuit is open now; no further requests reach the server.
	_, err := client.Enhance(context.Background(), Request{Text: "hello"})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 3, calls)
}

func TestCircuitBreaker_CancelledContext(t *testing.T) {
	cb := NewCircuitBreaker()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cb.Execute(ctx, func() (interface{}, error) {
		t.Fatal("fn must not run with a cancelled context")
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
