package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/covenantlabs/covenant/internal/config"
)

// Ollama queries a local Ollama instance through its generate endpoint.
type Ollama struct {
	cfg    config.OllamaConfig
	client *http.Client
	logger *slog.Logger
}

// NewOllama builds an Ollama provider from its configuration.
func NewOllama(cfg config.OllamaConfig, logger *slog.Logger) *Ollama {
	return &Ollama{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout.Std()},
		logger: logger,
	}
}

// Name implements Provider.
func (o *Ollama) Name() string { return "ollama" }

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Query implements Provider.
func (o *Ollama) Query(ctx context.Context, prompt string) (string, error) {
	return withRetry(ctx, o.logger, o.Name(), func() (string, error) {
		return o.generate(ctx, prompt)
	})
}

func (o *Ollama) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:  o.cfg.Model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			NumPredict:  o.cfg.MaxTokens,
			Temperature: o.cfg.Temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	url := strings.TrimSuffix(o.cfg.URL, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned %d: %s", resp.StatusCode, truncate(string(payload), 200))
	}

	var out ollamaResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama error: %s", out.Error)
	}
	return out.Response, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
