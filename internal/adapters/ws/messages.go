package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	// Client to Server message types
	MessageTypeSubscribe      MessageType = "subscribe"
	MessageTypeUnsubscribe    MessageType = "unsubscribe"
	MessageTypeCreateRequest  MessageType = "create_request"
	MessageTypeApproveRequest MessageType = "approve_request"
	MessageTypeRejectRequest  MessageType = "reject_request"
	MessageTypeCreateAuction  MessageType = "create_auction"
	MessageTypeStartAuction   MessageType = "start_auction"
	MessageTypePlaceBid       MessageType = "place_bid"
	MessageTypeCloseAuction   MessageType = "close_auction"
	MessageTypeAwardAuction   MessageType = "award_auction"
	MessageTypeCancelAuction  MessageType = "cancel_auction"
	MessageTypeListRequests   MessageType = "list_requests"
	MessageTypeListBids       MessageType = "list_bids"
	MessageTypePing           MessageType = "ping"

	// Server to Client message types
	MessageTypeRequestUpdate MessageType = "request_update"
	MessageTypeAuctionUpdate MessageType = "auction_update"
	MessageTypeBidPlaced     MessageType = "bid_placed"
	MessageTypeEvent         MessageType = "event"
	MessageTypeError         MessageType = "error"
	MessageTypePong          MessageType = "pong"
)

// Message validation errors
var (
	ErrMessageTypeRequired = errors.New("message type is required")
	ErrEntityIDRequired    = errors.New("entity_id is required")
	ErrUnknownMessageType  = errors.New("unknown message type")
)

// ClientMessage represents a command from an operator console. EntityID
// names the request or auction the command targets; Data carries the rest
// of the payload.
type ClientMessage struct {
	Type      MessageType            `json:"type"`
	EntityID  *uuid.UUID             `json:"entity_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// ServerMessage represents a message sent from server to client
type ServerMessage struct {
	Type      MessageType            `json:"type"`
	EntityID  *uuid.UUID             `json:"entity_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Error     *string                `json:"error,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

func NewServerMessage(msgType MessageType) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Data:      make(map[string]interface{}),
		Timestamp: time.Now().Unix(),
	}
}

func NewErrorMessage(err string, entityID *uuid.UUID) *ServerMessage {
	return &ServerMessage{
		Type:      MessageTypeError,
		EntityID:  entityID,
		Error:     &err,
		Timestamp: time.Now().Unix(),
	}
}

// ParseClientMessage parses a JSON message from client
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse client message: %w", err)
	}

	if msg.Type == "" {
		return nil, ErrMessageTypeRequired
	}

	return &msg, nil
}

// Validate validates a client message
func (m *ClientMessage) Validate() error {
	switch m.Type {
	case MessageTypeSubscribe, MessageTypeUnsubscribe,
		MessageTypeApproveRequest, MessageTypeRejectRequest,
		MessageTypeStartAuction, MessageTypePlaceBid,
		MessageTypeCloseAuction, MessageTypeAwardAuction,
		MessageTypeCancelAuction, MessageTypeListBids:
		return m.validateEntityID()

	case MessageTypeCreateRequest, MessageTypeCreateAuction,
		MessageTypeListRequests, MessageTypePing:
		return nil
	}

	return ErrUnknownMessageType
}

func (m *ClientMessage) validateEntityID() error {
	if m.EntityID == nil || *m.EntityID == uuid.Nil {
		return ErrEntityIDRequired
	}
	return nil
}

// stringField extracts a required string field from the message payload
func (m *ClientMessage) stringField(key string) (string, error) {
	value, ok := m.Data[key].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

// floatField extracts a required numeric field from the message payload
func (m *ClientMessage) floatField(key string) (float64, error) {
	value, ok := m.Data[key].(float64)
	if !ok {
		return 0, fmt.Errorf("valid %s is required", key)
	}
	return value, nil
}

// uuidField extracts a required UUID field from the message payload
func (m *ClientMessage) uuidField(key string) (uuid.UUID, error) {
	raw, err := m.stringField(key)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s format", key)
	}
	return id, nil
}

// timeField extracts a required RFC3339 timestamp from the message payload
func (m *ClientMessage) timeField(key string) (time.Time, error) {
	raw, err := m.stringField(key)
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format", key)
	}
	return t, nil
}
