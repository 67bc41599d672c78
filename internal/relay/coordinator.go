package relay

import (
	"context"
	"log/slog"
	"time"

	"relay-service/internal/audit"
)

// Coordinator orchestrates one inbound event at a time for a connection:
// resolve room membership, apply the delivery filter per recipient, emit.
type Coordinator struct {
	hub     *Hub
	filter  *DeliveryFilter
	auditor audit.Publisher
}

func NewCoordinator(hub *Hub, filter *DeliveryFilter, auditor audit.Publisher) *Coordinator {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Coordinator{hub: hub, filter: filter, auditor: auditor}
}

// HandleJoin records a room membership. An empty room id is logged and
// dropped; the client receives no feedback either way.
func (co *Coordinator) HandleJoin(sender *Client, p JoinPayload) {
	if err := co.hub.Join(sender, p.RoomID); err != nil {
		slog.Warn("join dropped", "clientID", sender.id, "userID", sender.userID, "error", err)
	}
}

// HandleSend relays one message to the filtered membership of a room.
//
// The contract is best-effort and fire-and-forget: an empty room id or empty
// content drops the message with a log line and no error to the sender. The
// sender learns of a successful send only through the echo it receives as a
// recipient of its own message.
func (co *Coordinator) HandleSend(ctx context.Context, sender *Client, p SendPayload) {
	if p.RoomID == "" || p.Content == "" {
		slog.Warn("message dropped, empty room or content",
			"clientID", sender.id, "userID", sender.userID, "roomID", p.RoomID)
		return
	}

	msg := NewOutboundMessage(sender.userID, sender.username, p.RoomID, p.Content)
	data, err := NewEvent(EventRoomMessage, msg)
	if err != nil {
		slog.Error("message encode failed", "clientID", sender.id, "error", err)
		return
	}

	// Snapshot, not a live cursor. Recipients that disconnect after this
	// point turn their emission into a no-op.
	members := co.hub.MembersOf(p.RoomID)

	for _, recipient := range members {
		if !co.filter.Allow(ctx, sender.userID, recipient.userID) {
			slog.Info("delivery suppressed",
				"messageID", msg.ID,
				"senderID", sender.userID, "sender", sender.username,
				"recipientID", recipient.userID, "recipient", recipient.username,
				"roomID", p.RoomID)
			co.publishAudit(ctx, audit.Event{
				Kind:         audit.KindDeliverySuppressed,
				UserID:       recipient.userID,
				PeerID:       sender.userID,
				RoomID:       p.RoomID,
				ConnectionID: recipient.id,
				At:           time.Now().UTC(),
			})
			continue
		}
		recipient.Deliver(data)
	}
}

func (co *Coordinator) publishAudit(ctx context.Context, event audit.Event) {
	if err := co.auditor.Publish(ctx, event); err != nil {
		slog.Debug("audit event dropped", "kind", event.Kind, "error", err)
	}
}
