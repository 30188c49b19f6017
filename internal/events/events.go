package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types published on the marketplace topic.
const (
	TypeOfferCreated     = "offer.created"
	TypeOfferAccepted    = "offer.accepted"
	TypeOfferRejected    = "offer.rejected"
	TypeOfferBought      = "offer.bought"
	TypePropertyCreated  = "property.created"
	TypePropertyVerified = "property.verified"
	TypePropertyRejected = "property.rejected"
	TypePropertyDeleted  = "property.deleted"
)

// Event is the envelope of every domain event. Messages are keyed by
// PropertyID, so events of one listing stay ordered within a partition.
type Event struct {
	EventID    string            `json:"eventId"`
	EventType  string            `json:"eventType"`
	PropertyID string            `json:"propertyId"`
	OfferID    string            `json:"offerId,omitempty"`
	Status     string            `json:"status,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType, propertyID string) Event {
	return Event{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		PropertyID: propertyID,
		Timestamp:  time.Now().UTC(),
	}
}

// IPublisher delivers domain events to downstream consumers.
type IPublisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event.
func NewNoopPublisher() IPublisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, ...Event) error { return nil }

func (noopPublisher) Close() error { return nil }
