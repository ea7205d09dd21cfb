package server

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("short", 500); got != "short" {
		t.Fatalf("short input must pass through, got %q", got)
	}
	got := truncateRunes(strings.Repeat("é", 600), 500)
	if n := utf8.RuneCountInString(got); n != 500 {
		t.Fatalf("expected 500 runes, got %d", n)
	}
}

func TestClampReply(t *testing.T) {
	if got := clampReply("short", 1600); got != "short" {
		t.Fatalf("short input must pass through, got %q", got)
	}
	exact := strings.Repeat("a", 1600)
	if got := clampReply(exact, 1600); got != exact {
		t.Fatal("input at the limit must pass through unmarked")
	}
	got := clampReply(strings.Repeat("a", 1601), 1600)
	if n := utf8.RuneCountInString(got); n != 1600 {
		t.Fatalf("expected 1600 runes, got %d", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncation marker, got tail %q", got[len(got)-5:])
	}
}
