// Package provider abstracts the reasoning services that turn contract
// text into structured responses. The synthesis core only ever sees the
// Provider interface; everything HTTP-shaped lives here.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/covenantlabs/covenant/internal/config"
)

// Provider is a reasoning service that answers free-form prompts.
type Provider interface {
	// Query sends a prompt and returns the raw completion text.
	Query(ctx context.Context, prompt string) (string, error)

	// Name identifies the provider for logging and result metadata.
	Name() string
}

// ErrUnavailable reports that the provider endpoint could not be reached
// after all retries.
var ErrUnavailable = errors.New("provider unavailable")

const maxAttempts = 3

// retryBackoff is the base delay between attempts; attempt n waits n times
// this long. Tests shrink it.
var retryBackoff = 2 * time.Second

// New builds the provider selected by the configuration.
func New(cfg config.ProviderConfig, logger *slog.Logger) (Provider, error) {
	switch cfg.Name {
	case config.ProviderOllama:
		return NewOllama(cfg.Ollama, logger), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAI, logger)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
}

// withRetry runs fn up to maxAttempts times with a linear backoff,
// stopping early when the context is done.
func withRetry(ctx context.Context, logger *slog.Logger, name string, fn func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err
		logger.Warn("provider query failed",
			"provider", name,
			"attempt", attempt,
			"error", err)

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}
	return "", fmt.Errorf("%w: %s after %d attempts: %v", ErrUnavailable, name, maxAttempts, lastErr)
}
