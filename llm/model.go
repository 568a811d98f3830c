// Package llm is the language model boundary: a plain text-completion
// interface and the providers that implement it.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCompletion = errors.New("llm: model returned no completion")
	ErrUnknownProvider = errors.New("llm: unknown provider")
)

// Model completes a prompt. Generation stops before any of the stop
// sequences.
type Model interface {
	Complete(ctx context.Context, prompt string, stop []string) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider          string // "openai" or "anthropic"
	Model             string
	APIKey            string
	BaseURL           string
	Temperature       float64
	MaxTokens         int
	RequestsPerSecond float64 // 0 disables rate limiting
}

// New creates the Model described by cfg.
func New(cfg Config) (Model, error) {
	var m Model
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		m = NewOpenAI(cfg)
	case "anthropic":
		m = NewAnthropic(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if cfg.RequestsPerSecond > 0 {
		m = NewRateLimited(m, cfg.RequestsPerSecond)
	}
	return m, nil
}
