package outbound

import (
	"context"

	"github.com/google/uuid"
)

// EventType represents the type of domain event being published
type EventType string

const (
	EventRequestCreated  EventType = "disposal_request.created"
	EventRequestApproved EventType = "disposal_request.approved"
	EventRequestRejected EventType = "disposal_request.rejected"

	EventAuctionCreated   EventType = "auction.created"
	EventAuctionStarted   EventType = "auction.started"
	EventAuctionClosed    EventType = "auction.closed"
	EventAuctionAwarded   EventType = "auction.awarded"
	EventAuctionCancelled EventType = "auction.cancelled"
	EventAuctionEndDue    EventType = "auction.end_due"

	EventBidPlaced EventType = "bid.placed"
)

// Event represents a domain event published after a successful command.
// Summary is human readable; Data carries the entity delta.
type Event struct {
	Type      EventType              `json:"type"`
	EntityID  uuid.UUID              `json:"entity_id"`
	Summary   string                 `json:"summary"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}

// Notifier defines the interface for publishing domain events to
// notification collaborators and streaming them to subscribed operators
type Notifier interface {
	// Subscribe subscribes a client to events for a specific entity.
	// Events for every entity a client watches are delivered to the same
	// channel.
	Subscribe(ctx context.Context, entityID uuid.UUID, clientID string, eventChan chan Event) error

	// Unsubscribe removes a client's subscription for a specific entity.
	// The client's event channel is owned by the caller and is never
	// closed here.
	Unsubscribe(ctx context.Context, entityID uuid.UUID, clientID string) error

	// UnsubscribeAll drops every subscription a client holds. Called when
	// the client disconnects.
	UnsubscribeAll(ctx context.Context, clientID string) error

	// Publish publishes an event to all subscribers of an entity
	Publish(ctx context.Context, entityID uuid.UUID, event Event) error

	// IsSubscribed checks if a client is subscribed to an entity
	IsSubscribed(ctx context.Context, entityID uuid.UUID, clientID string) bool
}
