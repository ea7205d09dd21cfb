package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/bunge-labs/billbot/config"
	ollama_provider "github.com/bunge-labs/billbot/provider/ollama"
)

// Client represents the supported generation backends.
type Client string

const (
	Ollama Client = "ollama"
)

// Options tunes a single generation call.
type Options = ollama_provider.Options

// Sentinel outcomes of a generation call. ErrUnavailable means the backend
// could not be reached after exhausting retries; ErrEmptyCompletion means the
// stream completed cleanly but produced no text. Callers pick user-facing
// copy with errors.Is, never by string matching.
var (
	ErrUnavailable     = ollama_provider.ErrUnavailable
	ErrEmptyCompletion = ollama_provider.ErrEmptyCompletion
)

// Provider is the interface every generation backend must satisfy.
type Provider interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
	Ping(ctx context.Context) error
}

// NewProvider creates a generation client from configuration.
func NewProvider(client Client, cfg config.LLMConfig) (Provider, error) {
	switch client {
	case Ollama:
		return ollama_provider.New(cfg), nil
	case "":
		return nil, errors.New("generation provider not configured")
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", client)
	}
}
