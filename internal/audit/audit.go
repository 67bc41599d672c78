package audit

import (
	"context"
	"time"
)

// Kind labels an audit event.
type Kind string

const (
	KindConnectionAdmitted Kind = "connection.admitted"
	KindConnectionRefused  Kind = "connection.refused"
	KindDeliverySuppressed Kind = "delivery.suppressed"
)

// Event records a policy-relevant occurrence in the relay: a connection being
// admitted or refused, or a delivery suppressed by the block filter.
type Event struct {
	Kind         Kind      `json:"kind"`
	UserID       uint      `json:"userId,omitempty"`
	PeerID       uint      `json:"peerId,omitempty"`
	RoomID       string    `json:"roomId,omitempty"`
	ConnectionID string    `json:"connectionId,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	At           time.Time `json:"at"`
}

// Publisher ships audit events to an external sink. Publishing is
// best-effort; a failed publish must never affect relay behavior.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop discards all events. Used when no Kafka brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
