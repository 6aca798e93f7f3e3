package publishers

import (
	"context"
	"strings"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/samvad-hq/samvad-app-kit/internal/domain"
)

func TestGCPPubSubPublisherPublishes(t *testing.T) {
	// Use the in-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer client.Close()
	if _, err := client.CreateTopic(ctx, "auth-events"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	pub, err := newGCPPubSubPublisher(ctx, "pubsub", &GCPQueueConfig{
		ProjectID: "test-project",
		Topic:     "auth-events",
	}, nil)
	if err != nil {
		t.Fatalf("newGCPPubSubPublisher: %v", err)
	}
	defer pub.Close()

	err = pub.Publish(ctx, NewAuthExpiredEvent("app-1", domain.AuthEvent{Method: "GET", StatusCode: 401}))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Attributes["event_type"] != EventTypeAuthExpired {
		t.Fatalf("attributes = %#v", msgs[0].Attributes)
	}
	if !strings.Contains(string(msgs[0].Data), `"app":"app-1"`) {
		t.Fatalf("data = %s", msgs[0].Data)
	}
}
