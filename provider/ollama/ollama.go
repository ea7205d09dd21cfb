// Package ollama_provider implements the generation client against an
// Ollama-compatible streaming backend.
package ollama_provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bunge-labs/billbot/config"
)

// Sentinel outcomes, distinguishable with errors.Is.
var (
	// ErrUnavailable is returned after transport retries are exhausted.
	ErrUnavailable = errors.New("generation backend unavailable")
	// ErrEmptyCompletion is returned when a clean stream accumulated no text.
	ErrEmptyCompletion = errors.New("generation produced no text")
)

// Default client settings, matching the backend's conservative profile.
const (
	DefaultBaseURL     = "http://127.0.0.1:11434"
	DefaultModel       = "llama3.2:latest"
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 2 * time.Second
	DefaultTimeout     = 300 * time.Second
	DefaultMaxTokens   = 150
	DefaultTemperature = 0.7
)

// Options tunes a single generation call.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Client talks to an Ollama generate endpoint. Construct it once and share
// it; it holds no per-call state.
type Client struct {
	baseURL    string
	model      string
	maxRetries int
	retryDelay time.Duration
	httpClient *http.Client
	logger     *log.Logger
}

// generateRequest is the /api/generate request body.
type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Options options `json:"options"`
}

type options struct {
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// generateFragment is one newline-delimited JSON line of the streamed reply.
type generateFragment struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// New builds a Client from configuration, filling unset fields with the
// defaults above.
func New(cfg config.LLMConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		model:      model,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.New(log.Writer(), "[OLLAMA] ", log.LstdFlags),
	}
}

// Generate sends the prompt and accumulates the streamed completion. Failed
// transports are retried up to the configured attempt count with a fixed
// delay; exhaustion returns ErrUnavailable. A clean stream with no text
// returns ErrEmptyCompletion.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Options: options{
			MaxTokens:   opts.MaxTokens,
			Temperature: opts.Temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	var resp *http.Response
	for attempt := 1; ; attempt++ {
		resp, err = c.post(ctx, body)
		if err == nil {
			break
		}
		c.logger.Printf("generate attempt %d/%d failed: %v", attempt, c.maxRetries, err)
		if attempt >= c.maxRetries {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		select {
		case <-time.After(c.retryDelay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		}
	}
	defer resp.Body.Close()

	text, err := c.drainStream(resp)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return resp, nil
}

// drainStream accumulates response deltas until the done flag or EOF.
// Malformed fragment lines are logged and skipped, never fatal.
func (c *Client) drainStream(resp *http.Response) (string, error) {
	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var frag generateFragment
		if err := json.Unmarshal([]byte(line), &frag); err != nil {
			c.logger.Printf("skipping malformed fragment: %v", err)
			continue
		}
		full.WriteString(frag.Response)
		if frag.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("%w: read stream: %v", ErrUnavailable, err)
	}
	return full.String(), nil
}

// Ping checks the backend is reachable without running inference.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping backend: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping backend: status %d", resp.StatusCode)
	}
	return nil
}
