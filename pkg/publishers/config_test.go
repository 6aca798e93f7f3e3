package publishers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFileEnabledFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.yaml")
	raw := `
publishers:
  - id: old-hook
    type: http
    enabled: false
    http:
      url: https://example.com/old
  - id: hook
    type: http
    http:
      url: https://example.com/auth-expired
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	set, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	enabled := set.Enabled()
	if set.Len() != 2 || len(enabled) != 1 || enabled[0].ID != "hook" {
		t.Fatalf("expected only hook enabled, got %#v", enabled)
	}
}

func TestParseAcceptsJSONForEverySinkType(t *testing.T) {
	raw := `{"publishers": [
  {"id": " hook ", "type": "HTTP", "http": {"url": " https://example.com/hook ", "method": "put", "headers": {"X-Key": "1", " ": "x"}}},
  {"id": "queue", "type": "sqs", "sqs": {"queue_url": "https://sqs.example.com/q", "region": "eu-west-1"}},
  {"id": "topic", "type": "sns", "sns": {"topic_arn": "arn:aws:sns:eu-west-1:1:t", "region": "eu-west-1"}},
  {"id": "ps", "type": "gcp_pubsub", "gcp_pubsub": {"project_id": "p", "topic": "auth-events"}}
]}`

	set, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(set.Enabled()) != 4 {
		t.Fatalf("expected 4 enabled publishers, got %d", len(set.Enabled()))
	}
	hook, ok := set.ByID("hook")
	if !ok {
		t.Fatalf("hook publisher missing")
	}
	if hook.Type != TypeHTTP || hook.HTTP.URL != "https://example.com/hook" || hook.HTTP.Method != "PUT" {
		t.Fatalf("hook not normalized: %#v", hook.HTTP)
	}
	if len(hook.HTTP.Headers) != 1 || hook.HTTP.TimeoutSeconds != defaultWebhookTimeoutSeconds {
		t.Fatalf("hook defaults not applied: %#v", hook.HTTP)
	}
}

func TestParseExpandsEnvironment(t *testing.T) {
	t.Setenv("AUTH_HOOK_KEY", "from-env")
	raw := `
publishers:
  - id: hook
    type: http
    http:
      url: https://example.com/hook
      headers:
        X-Hook-Key: ${AUTH_HOOK_KEY}
`
	set, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	hook, _ := set.ByID("hook")
	if hook.HTTP.Headers["X-Hook-Key"] != "from-env" {
		t.Fatalf("headers = %#v", hook.HTTP.Headers)
	}
}

func TestParseRejectsInvalidPublishers(t *testing.T) {
	cases := map[string]string{
		"empty":        `publishers: []`,
		"missing id":   `publishers: [{type: http, http: {url: "https://x"}}]`,
		"unknown type": `publishers: [{id: k, type: kafka}]`,
		"no block":     `publishers: [{id: h, type: http}]`,
		"relative url": `publishers: [{id: h, type: http, http: {url: /hook}}]`,
		"sqs region":   `publishers: [{id: q, type: sqs, sqs: {queue_url: "https://q"}}]`,
		"sns arn":      `publishers: [{id: s, type: sns, sns: {topic_arn: topic, region: eu-west-1}}]`,
		"gcp topic":    `publishers: [{id: g, type: gcp_pubsub, gcp_pubsub: {project_id: p}}]`,
		"duplicate":    `publishers: [{id: a, type: http, http: {url: "https://x"}}, {id: a, type: http, http: {url: "https://y"}}]`,
	}
	for name, raw := range cases {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadFileWrapsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.yaml")
	if err := os.WriteFile(path, []byte("publishers: [{id: k, type: kafka}]"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	_, err := LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), path) || !strings.Contains(err.Error(), "kafka") {
		t.Fatalf("error = %v", err)
	}
	if _, err := LoadFile(" "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
