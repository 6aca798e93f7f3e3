package publishers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/samvad-app-kit/pkg/httpclient"
)

// httpPublisher posts events as JSON to a webhook.
type httpPublisher struct {
	id     string
	cfg    HTTPPublisherConfig
	client *resty.Client
	log    Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}
	hook := *cfg.HTTP
	hook.normalize()
	if err := hook.validate(); err != nil {
		return nil, fmt.Errorf("publisher %q: %w", cfg.ID, err)
	}

	client := httpclient.NewRestyHTTPClient(time.Duration(hook.TimeoutSeconds) * time.Second)
	client.SetHeaders(hook.Headers)
	client.SetHeader("Content-Type", "application/json")

	return &httpPublisher{
		id:     cfg.ID,
		cfg:    hook,
		client: client,
		log:    orDiscard(log),
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

// Publish delivers evt and treats any non-2xx answer as a failed delivery.
func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(evt).
		Execute(h.cfg.Method, h.cfg.URL)
	if err != nil {
		return fmt.Errorf("webhook %s %s: %w", h.cfg.Method, h.cfg.URL, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("webhook %s %s: status %d: %s", h.cfg.Method, h.cfg.URL, resp.StatusCode(),
			httpclient.BodySnippet(resp.Header().Get("Content-Type"), resp.Body()))
	}

	h.log.DebugObj("webhook delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"event_type":   evt.Type,
		"status":       resp.StatusCode(),
	})
	return nil
}
