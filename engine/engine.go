// Package engine composes the query-resolution pipeline: classify the query,
// resolve or aggregate knowledge from the bill index, build the prompt, and
// obtain a completion from the generation backend.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bunge-labs/billbot/internal/resolve"
	"github.com/bunge-labs/billbot/internal/telemetry"
	"github.com/bunge-labs/billbot/provider"
)

// Fixed user-facing copy for the pipeline's terminal outcomes.
const (
	MsgEmptyQuery      = "Please provide a valid query."
	MsgUnavailable     = "Sorry, I couldn't process your request at this time."
	MsgEmptyCompletion = "Sorry, I couldn't generate a response."
)

const persona = "You are an assistant knowledgeable about Kenyan bills."

// Prompt is the builder's outcome: either a short-circuit answer that skips
// generation entirely, or the text to send to the backend.
type Prompt struct {
	ShortCircuit bool
	Text         string
}

// BuildPrompt composes the instruction text for the generation backend.
// List mode short-circuits with the knowledge verbatim; Detail embeds the
// knowledge block; General carries only the query.
func BuildPrompt(query string, mode resolve.Mode, knowledge string) Prompt {
	switch {
	case mode == resolve.ModeList:
		return Prompt{ShortCircuit: true, Text: knowledge}
	case mode == resolve.ModeDetail && knowledge != "":
		return Prompt{Text: fmt.Sprintf(
			"%s\n\nHere is some relevant information from the knowledge base:\n%s\n\nUser's question: %s\n\nBased on the above information, provide a comprehensive and accurate response.",
			persona, knowledge, query)}
	default:
		return Prompt{Text: fmt.Sprintf(
			"%s\n\nUser's question: %s\n\nProvide a comprehensive and accurate response based on your knowledge.",
			persona, query)}
	}
}

// Engine executes the pipeline synchronously, one query at a time.
type Engine struct {
	Resolver    *resolve.Resolver
	Aggregator  *resolve.Aggregator
	Provider    provider.Provider
	Logger      *log.Logger
	Metrics     *telemetry.Metrics
	MaxTokens   int
	Temperature float64
}

// New wires an Engine over the given index catalog and generation provider.
// metrics may be nil.
func New(catalog resolve.Catalog, prov provider.Provider, corpus string, maxTokens int, temperature float64, metrics *telemetry.Metrics, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(log.Writer(), "[ENGINE] ", log.LstdFlags)
	}
	return &Engine{
		Resolver:    resolve.NewResolver(catalog, logger),
		Aggregator:  resolve.NewAggregator(catalog, corpus),
		Provider:    prov,
		Logger:      logger,
		Metrics:     metrics,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// Answer resolves one user query to presentable text. Failures inside the
// pipeline become fixed copy or demoted modes; no error crosses this
// boundary. The returned mode is the one that produced the answer.
func (e *Engine) Answer(ctx context.Context, query string) (string, resolve.Mode) {
	query = strings.TrimSpace(query)
	if query == "" {
		return MsgEmptyQuery, resolve.ModeGeneral
	}

	mode := resolve.Classify(query)
	var knowledge string

	if mode == resolve.ModeList {
		text, err := e.Aggregator.ListAll()
		if err != nil {
			e.Logger.Printf("list aggregation failed, demoting to general: %v", err)
			mode = resolve.ModeGeneral
		} else {
			e.countQuery(resolve.ModeList)
			return strings.TrimSpace(text), resolve.ModeList
		}
	}

	if mode == resolve.ModeDetail {
		match, ok, err := e.Resolver.Resolve(query)
		switch {
		case err != nil:
			e.Logger.Printf("resolution failed, demoting to general: %v", err)
			mode = resolve.ModeGeneral
		case !ok:
			mode = resolve.ModeGeneral
		default:
			knowledge = formatKnowledge(match)
		}
	}

	prompt := BuildPrompt(query, mode, knowledge)
	text, err := e.Provider.Generate(ctx, prompt.Text, provider.Options{
		MaxTokens:   e.MaxTokens,
		Temperature: e.Temperature,
	})
	switch {
	case errors.Is(err, provider.ErrEmptyCompletion):
		e.countFailure("empty")
		return MsgEmptyCompletion, mode
	case err != nil:
		e.countFailure("unavailable")
		return MsgUnavailable, mode
	}
	e.countQuery(mode)
	return text, mode
}

func formatKnowledge(m resolve.Match) string {
	return fmt.Sprintf("**Knowledge Base Data:**\n**Title:** %s\n**Description:**\n%s\n",
		resolve.NormalizeTitle(m.Title), m.Description)
}

func (e *Engine) countQuery(mode resolve.Mode) {
	if e.Metrics != nil {
		e.Metrics.QueriesTotal.WithLabelValues(mode.String()).Inc()
	}
}

func (e *Engine) countFailure(reason string) {
	if e.Metrics != nil {
		e.Metrics.GenerationFailures.WithLabelValues(reason).Inc()
	}
}
