// Package events publishes catalog lifecycle events to a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
	UserCreated    = "user.created"
	UserUpdated    = "user.updated"
	UserDeleted    = "user.deleted"
	SessionRevoked = "user.sessions_revoked"
)

// Event is the message body published for every lifecycle change.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	SubjectID  string    `json:"subject_id"`
	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New builds an event of the given type about subjectID.
func New(eventType, subjectID, actorID string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		SubjectID:  subjectID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Sender is the transport a broker client exposes: the key is the AMQP
// routing key or the Kafka message key.
type Sender interface {
	Send(ctx context.Context, key string, body []byte) error
}

// BrokerPublisher encodes events as JSON and hands them to a Sender.
type BrokerPublisher struct {
	sender Sender
}

// NewBrokerPublisher creates a publisher backed by sender.
func NewBrokerPublisher(sender Sender) *BrokerPublisher {
	return &BrokerPublisher{sender: sender}
}

// Publish sends the event keyed by its type.
func (p *BrokerPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.sender.Send(ctx, event.Type, body); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}
