package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-app-kit/internal/domain"
)

// EventTypeAuthExpired marks events raised when the API rejects a credential.
const EventTypeAuthExpired = "auth_expired"

// Event represents the payload published downstream.
type Event struct {
	Type       string           `json:"type"`
	App        string           `json:"app"`
	Auth       domain.AuthEvent `json:"auth"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// NewAuthExpiredEvent constructs an Event for a rejected request.
func NewAuthExpiredEvent(app string, auth domain.AuthEvent) Event {
	return Event{
		Type:       EventTypeAuthExpired,
		App:        app,
		Auth:       auth,
		OccurredAt: time.Now().UTC(),
	}
}

// attributes are attached as message attributes by queue/topic publishers.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_type": e.Type,
		"app":        e.App,
	}
}
