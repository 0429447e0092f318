// Package events publishes catalog change notifications after a write commits.
// Publishing is best effort: a failed publish is logged and never undoes or
// fails the write that produced it.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	ProductCreated  = "product.created"
	ProductUpdated  = "product.updated"
	ProductDeleted  = "product.deleted"
	CategoryCreated = "category.created"
	CategoryUpdated = "category.updated"
	CategoryDeleted = "category.deleted"
)

// Event is one catalog change.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	EntityID   uint      `json:"entity_id"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType string, entityID uint, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		EntityID:   entityID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events to whatever is listening.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
