package httpclient

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBodySnippetKeepsRunesWhole(t *testing.T) {
	// 511 ASCII bytes followed by a 3-byte rune straddling the limit.
	body := []byte(strings.Repeat("a", maxSnippetBytes-1) + "€€")

	got := BodySnippet("text/plain", body)
	if !utf8.ValidString(got) {
		t.Fatalf("snippet ends in a partial rune: %q", got[len(got)-3:])
	}
	if len(got) != maxSnippetBytes-1 {
		t.Fatalf("len = %d, want %d", len(got), maxSnippetBytes-1)
	}
}

func TestBodySnippetShortBodies(t *testing.T) {
	if got := BodySnippet("application/json", []byte(` {"error":"नहीं"} `)); got != `{"error":"नहीं"}` {
		t.Fatalf("snippet = %q", got)
	}
	if got := BodySnippet("text/html; charset=utf-8", []byte("<html><head><title>503</title></head><body><h1>Down</h1></body></html>")); got != "503: Down" {
		t.Fatalf("html snippet = %q", got)
	}
	if got := BodySnippet("", nil); got != "" {
		t.Fatalf("empty body snippet = %q", got)
	}
}
