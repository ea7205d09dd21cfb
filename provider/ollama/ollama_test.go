package ollama_provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bunge-labs/billbot/config"
)

func testConfig(url string) config.LLMConfig {
	return config.LLMConfig{
		Model:      "llama3.2:latest",
		BaseURL:    url,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
		Timeout:    5 * time.Second,
	}
}

func TestGenerateAccumulatesStream(t *testing.T) {
	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprintln(w, `{"response":"The Agriculture Bill ","done":false}`)
		fmt.Fprintln(w, `this line is not json`)
		fmt.Fprintln(w, `{"response":"regulates farming.","done":false}`)
		fmt.Fprintln(w, `{"response":"","done":true}`)
		fmt.Fprintln(w, `{"response":"ignored after done","done":false}`)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	got, err := c.Generate(context.Background(), "tell me about the agriculture bill", Options{MaxTokens: 150, Temperature: 0.7})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := "The Agriculture Bill regulates farming."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if gotReq.Model != "llama3.2:latest" {
		t.Fatalf("expected model in request, got %q", gotReq.Model)
	}
	if gotReq.Options.MaxTokens != 150 || gotReq.Options.Temperature != 0.7 {
		t.Fatalf("unexpected options: %+v", gotReq.Options)
	}
}

func TestGenerateRetriesThenUnavailable(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	_, err := c.Generate(context.Background(), "anything", Options{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", n)
	}
}

func TestGenerateRecoversWithinRetryBudget(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintln(w, `{"response":"recovered","done":true}`)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	got, err := c.Generate(context.Background(), "anything", Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "recovered" {
		t.Fatalf("expected %q, got %q", "recovered", got)
	}
}

func TestGenerateEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"","done":false}`)
		fmt.Fprintln(w, `{"response":"  ","done":true}`)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	_, err := c.Generate(context.Background(), "anything", Options{})
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
	if errors.Is(err, ErrUnavailable) {
		t.Fatal("empty completion must be distinguishable from unavailability")
	}
}

func TestGenerateStreamEndsWithoutDoneFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"partial answer","done":false}`)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	got, err := c.Generate(context.Background(), "anything", Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "partial answer" {
		t.Fatalf("expected accumulated text on EOF, got %q", got)
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	c2 := New(testConfig(srv.URL + "/missing"))
	if err := c2.Ping(context.Background()); err == nil {
		t.Fatal("expected ping failure against wrong path")
	}
}
