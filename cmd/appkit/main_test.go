package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/samvad-hq/samvad-app-kit/pkg/httpclient"
)

func TestRunCNMergesFragments(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"cn", "px-2 py-1", "p-3", "bg-red-500", "bg-blue-500"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "p-3 bg-blue-500" {
		t.Fatalf("cn output = %q", got)
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := run(nil, io.Discard); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := run([]string{"deploy"}, io.Discard); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestRunRequestPrintsResponse(t *testing.T) {
	t.Setenv("CREDENTIAL_STORE_TYPE", "memory")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/items" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-Trace"); got != "t-1" {
			t.Errorf("X-Trace = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		w.Write(body)
	}))
	defer srv.Close()

	var out bytes.Buffer
	err := run([]string{"--api-base-url", srv.URL, "request", "--data", `{"name":"x"}`, "-H", "X-Trace: t-1", "post", "/items"}, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := out.String(); got != "201\n{\"name\":\"x\"}\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestRunRequestSurfacesUnauthorized(t *testing.T) {
	t.Setenv("CREDENTIAL_STORE_TYPE", "memory")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var out bytes.Buffer
	err := run([]string{"--api-base-url", srv.URL, "request", "GET", "/me"}, &out)
	if !errors.Is(err, httpclient.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if !strings.HasPrefix(out.String(), "401") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRunTokenStatusDoesNotPrintToken(t *testing.T) {
	t.Setenv("CREDENTIAL_STORE_TYPE", "memory")

	var out bytes.Buffer
	if err := run([]string{"--api-base-url", "https://api.example.com", "token", "status"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "no token stored" {
		t.Fatalf("status output = %q", got)
	}
	if err := run([]string{"--api-base-url", "https://api.example.com", "token", "set"}, io.Discard); err == nil {
		t.Fatalf("expected usage error for token set without value")
	}
}

func TestParseHeaders(t *testing.T) {
	h, err := parseHeaders([]string{"Accept: text/plain", "X-Empty:"})
	if err != nil {
		t.Fatalf("parseHeaders: %v", err)
	}
	if h["Accept"] != "text/plain" || h["X-Empty"] != "" {
		t.Fatalf("headers = %#v", h)
	}
	if _, err := parseHeaders([]string{"no-colon"}); err == nil {
		t.Fatalf("expected error for malformed header")
	}
}
