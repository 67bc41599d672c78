package relay

import (
	"context"
	"log/slog"
)

// BlockStore answers "which user ids has this user blocked". The live store
// is queried on every delivery decision; results are never cached across
// messages so a new block takes effect on the very next send.
type BlockStore interface {
	BlockedIDs(ctx context.Context, userID uint) (map[uint]struct{}, error)
}

// DeliveryFilter decides, per candidate recipient, whether a sender's message
// may be delivered.
//
// Blocking is one-directional and recipient-controlled: only the recipient's
// own block list is consulted. The sender's list has no bearing on whether
// the sender's outgoing messages reach others. This asymmetry is inherited
// from the relationship model and is intentional.
type DeliveryFilter struct {
	store BlockStore
}

func NewDeliveryFilter(store BlockStore) *DeliveryFilter {
	return &DeliveryFilter{store: store}
}

// Allow reports whether a message from sender may reach recipient. A sender
// always sees its own message echoed back. When the store is unreachable the
// filter fails closed: the recipient is treated as having blocked the sender
// for this attempt, and the rest of the fanout continues.
func (f *DeliveryFilter) Allow(ctx context.Context, senderID, recipientID uint) bool {
	if senderID == recipientID {
		return true
	}

	blocked, err := f.store.BlockedIDs(ctx, recipientID)
	if err != nil {
		slog.Error("block lookup failed, suppressing delivery",
			"senderID", senderID, "recipientID", recipientID, "error", err)
		return false
	}

	_, isBlocked := blocked[senderID]
	return !isBlocked
}
