// Package events publishes domain events about user records. Kafka is used
// when brokers are configured; otherwise events are only logged.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/dadkeeper/internal/logging"
)

const (
	ProfileUpdated = "profile.updated"
	JournalCreated = "journal.created"
	JournalUpdated = "journal.updated"
	JournalDeleted = "journal.deleted"
	DraftCreated   = "draft.created"
	DraftUpdated   = "draft.updated"
	AccountDeleted = "account.deleted"
	TemplateUsed   = "template.used"
)

// Publisher delivers a serialized event. partitionKey keeps one user's
// events ordered.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
}

// Event is the JSON envelope written for every domain event. Bodies never
// carry record contents, only identifiers.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"userId"`
	ResourceID string    `json:"resourceId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(eventType, userID, resourceID string) Event {
	return Event{Type: eventType, UserID: userID, ResourceID: resourceID, OccurredAt: time.Now().UTC()}
}

// publishTimeout bounds how long a request waits on the publisher.
const publishTimeout = 2 * time.Second

// Emit encodes e and hands it to p keyed by user. Failures are logged and
// swallowed: the database write has already committed. The publish runs
// under its own short deadline and ignores cancellation of ctx.
func Emit(ctx context.Context, p Publisher, log logging.Logger, e Event) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(e)
	if err != nil {
		log.Error(ctx, "event encode failed", "event_type", e.Type, "error", err)
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(pubCtx, e.Type, payload, e.UserID); err != nil {
		log.Warn(ctx, "event publish failed", "event_type", e.Type, "user_id", e.UserID, "error", err)
	}
}

// LoggingPublisher stands in for a broker when none is configured.
type LoggingPublisher struct {
	logger logging.Logger
}

func NewLoggingPublisher(logger logging.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger.With("module", "events.publisher")}
}

func (p *LoggingPublisher) Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error {
	p.logger.Info(ctx, "event published",
		"event_type", eventType,
		"partition_key", partitionKey,
		"payload_bytes", len(payload),
	)
	return nil
}
