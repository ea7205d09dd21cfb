package engine

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/bunge-labs/billbot/internal/kb"
	"github.com/bunge-labs/billbot/internal/resolve"
	"github.com/bunge-labs/billbot/provider"
)

type fakeProvider struct {
	lastPrompt string
	calls      int
	reply      string
	err        error
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts provider.Options) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeProvider) Ping(ctx context.Context) error { return nil }

func memIndex(t *testing.T, nodes ...kb.Node) *kb.Index {
	t.Helper()
	ix, err := kb.NewMemOnly()
	if err != nil {
		t.Fatalf("NewMemOnly: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	for _, n := range nodes {
		if err := ix.Upsert(n); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	return ix
}

func testEngine(t *testing.T, prov provider.Provider, nodes ...kb.Node) *Engine {
	t.Helper()
	return New(memIndex(t, nodes...), prov, "", 150, 0.7, nil, log.New(io.Discard, "", 0))
}

func TestAnswerEmptyQuery(t *testing.T) {
	prov := &fakeProvider{reply: "should not be called"}
	e := testEngine(t, prov)
	got, _ := e.Answer(context.Background(), "   \t ")
	if got != MsgEmptyQuery {
		t.Fatalf("expected %q, got %q", MsgEmptyQuery, got)
	}
	if prov.calls != 0 {
		t.Fatalf("empty query must not reach the backend, got %d calls", prov.calls)
	}
}

func TestAnswerListShortCircuitsOnEmptyIndex(t *testing.T) {
	prov := &fakeProvider{reply: "should not be called"}
	e := testEngine(t, prov)

	got, mode := e.Answer(context.Background(), "list of bills in kenya")
	if mode != resolve.ModeList {
		t.Fatalf("expected list mode, got %s", mode)
	}
	if got != "List of Bills in Kenya grouped by year:" {
		t.Fatalf("expected header-only listing, got %q", got)
	}
	if prov.calls != 0 {
		t.Fatalf("list mode must not reach the backend, got %d calls", prov.calls)
	}
}

func TestAnswerDetailEmbedsKnowledge(t *testing.T) {
	prov := &fakeProvider{reply: "It regulates farming."}
	e := testEngine(t, prov, kb.Node{
		ID:          1,
		Title:       "agriculture_bill_2023.pdf",
		Description: "An Act of Parliament to regulate farming.",
	})

	got, mode := e.Answer(context.Background(), "Agriculture Bill")
	if mode != resolve.ModeDetail {
		t.Fatalf("expected detail mode, got %s", mode)
	}
	if got != "It regulates farming." {
		t.Fatalf("unexpected answer %q", got)
	}
	if !strings.Contains(prov.lastPrompt, "Agriculture Bill 2023") {
		t.Fatalf("prompt missing normalized title:\n%s", prov.lastPrompt)
	}
	if !strings.Contains(prov.lastPrompt, "An Act of Parliament to regulate farming.") {
		t.Fatalf("prompt missing description:\n%s", prov.lastPrompt)
	}
	if !strings.Contains(prov.lastPrompt, "User's question: Agriculture Bill") {
		t.Fatalf("prompt missing literal query:\n%s", prov.lastPrompt)
	}
}

func TestAnswerDemotesToGeneralOnMiss(t *testing.T) {
	prov := &fakeProvider{reply: "General knowledge answer."}
	e := testEngine(t, prov, kb.Node{ID: 1, Title: "agriculture_bill_2023.pdf", Description: "farming"})

	got, mode := e.Answer(context.Background(), "zoning variance")
	if mode != resolve.ModeGeneral {
		t.Fatalf("expected general mode, got %s", mode)
	}
	if got != "General knowledge answer." {
		t.Fatalf("unexpected answer %q", got)
	}
	if strings.Contains(prov.lastPrompt, "knowledge base") {
		t.Fatalf("general prompt must not carry a knowledge block:\n%s", prov.lastPrompt)
	}
}

func TestAnswerMapsSentinelsToCopy(t *testing.T) {
	e := testEngine(t, &fakeProvider{err: provider.ErrUnavailable})
	got, _ := e.Answer(context.Background(), "tell me about the finance bill")
	if got != MsgUnavailable {
		t.Fatalf("expected %q, got %q", MsgUnavailable, got)
	}

	e = testEngine(t, &fakeProvider{err: provider.ErrEmptyCompletion})
	got, _ = e.Answer(context.Background(), "tell me about the finance bill")
	if got != MsgEmptyCompletion {
		t.Fatalf("expected %q, got %q", MsgEmptyCompletion, got)
	}
}

func TestBuildPromptVariants(t *testing.T) {
	list := BuildPrompt("list of bills", resolve.ModeList, "rendered listing")
	if !list.ShortCircuit || list.Text != "rendered listing" {
		t.Fatalf("unexpected list prompt: %+v", list)
	}

	detail := BuildPrompt("what is the water bill", resolve.ModeDetail, "**Title:** Water Bill 2021")
	if detail.ShortCircuit {
		t.Fatal("detail prompt must not short-circuit")
	}
	if !strings.Contains(detail.Text, "Water Bill 2021") || !strings.Contains(detail.Text, "what is the water bill") {
		t.Fatalf("detail prompt incomplete:\n%s", detail.Text)
	}

	general := BuildPrompt("what is the water bill", resolve.ModeGeneral, "")
	if strings.Contains(general.Text, "relevant information") {
		t.Fatalf("general prompt must omit the knowledge block:\n%s", general.Text)
	}
	if !strings.Contains(general.Text, "based on your knowledge") {
		t.Fatalf("general prompt missing background-knowledge instruction:\n%s", general.Text)
	}
}
