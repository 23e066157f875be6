package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covenantlabs/covenant/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSelectsProvider(t *testing.T) {
	cfg := config.Default().Provider

	p, err := New(cfg, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	cfg.Name = config.ProviderOpenAI
	cfg.OpenAI.APIKey = "sk-test"
	p, err = New(cfg, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	cfg.Name = "mistral"
	_, err = New(cfg, testLogger())
	assert.Error(t, err)
}

func TestOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI(config.OpenAIConfig{Model: "gpt-4"}, testLogger())
	assert.Error(t, err)
}

func TestOllamaQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nous-hermes2", req.Model)
		assert.False(t, req.Stream)
		assert.Equal(t, 4000, req.Options.NumPredict)

		json.NewEncoder(w).Encode(ollamaResponse{Response: `[{"id": "01"}]`})
	}))
	defer srv.Close()

	cfg := config.Default().Provider.Ollama
	cfg.URL = srv.URL

	out, err := NewOllama(cfg, testLogger()).Query(context.Background(), "find processes")
	require.NoError(t, err)
	assert.Equal(t, `[{"id": "01"}]`, out)
}

func TestOllamaRetriesThenFails(t *testing.T) {
	prev := retryBackoff
	retryBackoff = time.Millisecond
	defer func() { retryBackoff = prev }()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := config.Default().Provider.Ollama
	cfg.URL = srv.URL
	cfg.Timeout = config.Duration(5 * time.Second)

	_, err := NewOllama(cfg, testLogger()).Query(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, maxAttempts, calls)
}

func TestOllamaRetryStopsOnContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := config.Default().Provider.Ollama
	cfg.URL = srv.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOllama(cfg, testLogger()).Query(ctx, "prompt")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenAIQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "answer"}},
			},
		})
	}))
	defer srv.Close()

	p, err := NewOpenAI(config.OpenAIConfig{
		APIKey:  "sk-test",
		Model:   "gpt-4",
		Timeout: config.Duration(5 * time.Second),
	}, testLogger())
	require.NoError(t, err)

	// Point the shared client at the test server.
	p.client = srv.Client()
	p.client.Transport = rewriteHost(srv.URL)

	out, err := p.Query(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
}

// rewriteHost redirects every request to the given base URL.
func rewriteHost(base string) http.RoundTripper {
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		redirected, err := http.NewRequestWithContext(r.Context(), r.Method, base+r.URL.Path, r.Body)
		if err != nil {
			return nil, err
		}
		redirected.Header = r.Header
		return http.DefaultTransport.RoundTrip(redirected)
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestScriptedReplaysInOrder(t *testing.T) {
	p := NewScripted("first", "second")

	out, err := p.Query(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	out, err = p.Query(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "second", out)

	_, err = p.Query(context.Background(), "c")
	assert.Error(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, p.Prompts())
}

func TestScriptedFailing(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewFailing(boom).Query(context.Background(), "prompt")
	assert.ErrorIs(t, err, boom)
}
