package relay

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// EventType discriminates the JSON envelopes exchanged over a connection.
type EventType string

const (
	// Server -> client, sent once after a successful handshake.
	EventConnectionAck EventType = "connection.ack"

	// Client -> server.
	EventRoomJoin    EventType = "room.join"
	EventRoomMessage EventType = "room.message"

	// Server -> client.
	EventError EventType = "error"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventConnectionAck, EventRoomJoin, EventRoomMessage, EventError:
		return true
	default:
		return false
	}
}

// Event is the wire envelope. Data is decoded per Type.
type Event struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent marshals payload into an envelope of the given type.
func NewEvent(t EventType, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return json.Marshal(Event{Type: t, Data: data})
}

type JoinPayload struct {
	RoomID string `json:"roomId"`
}

type SendPayload struct {
	RoomID  string `json:"roomId"`
	Content string `json:"content"`
}

type Sender struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// OutboundMessage is the payload delivered to every allowed recipient of a
// room message. It is built once per send and never mutated afterwards.
type OutboundMessage struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	RoomID    string    `json:"roomId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewOutboundMessage(senderID uint, username, roomID, content string) OutboundMessage {
	return OutboundMessage{
		ID: uuid.New().String(),
		Sender: Sender{
			ID:       strconv.FormatUint(uint64(senderID), 10),
			Username: username,
		},
		RoomID:    roomID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

type AckPayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
