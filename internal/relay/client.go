package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound buffer per connection.
	sendBufferSize = 256
)

// Conn is the subset of *websocket.Conn the relay touches. Tests substitute
// an in-memory implementation.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

// Client is a live connection bound to exactly one verified identity for its
// lifetime. Identity is set at handshake and never reassigned; the username
// is cached for message construction and may go stale if the user renames.
type Client struct {
	id       string
	userID   uint
	username string

	hub  *Hub
	co   *Coordinator
	conn Conn
	send chan []byte

	ctx    context.Context
	cancel context.CancelFunc
	closed int32
}

func NewClient(hub *Hub, co *Coordinator, conn Conn, identity Identity) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		id:       uuid.New().String(),
		userID:   identity.UserID,
		username: identity.Username,
		hub:      hub,
		co:       co,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (c *Client) ID() string       { return c.id }
func (c *Client) UserID() uint     { return c.userID }
func (c *Client) Username() string { return c.username }

func (c *Client) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

// shutdown marks the client dead and cancels its context. The send channel
// is never closed; writePump exits through the context instead, so a racing
// Deliver can never panic on a closed channel.
func (c *Client) shutdown() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		c.cancel()
		c.conn.Close()
	}
}

// Deliver queues an encoded event for the peer. Delivery to a dead client is
// a no-op; a full buffer drops the client as too slow.
func (c *Client) Deliver(data []byte) {
	if c.isClosed() {
		return
	}

	select {
	case c.send <- data:
	case <-c.ctx.Done():
	default:
		slog.Warn("send buffer full, dropping client", "clientID", c.id, "userID", c.userID)
		c.shutdown()
	}
}

func (c *Client) sendEvent(t EventType, payload any) {
	data, err := NewEvent(t, payload)
	if err != nil {
		slog.Error("event encode failed", "clientID", c.id, "type", t, "error", err)
		return
	}
	c.Deliver(data)
}

func (c *Client) sendError(code, message string) {
	c.sendEvent(EventError, ErrorPayload{Code: code, Message: message})
}

func (c *Client) sendAck() {
	c.sendEvent(EventConnectionAck, AckPayload{
		ClientID: c.id,
		UserID:   strconv.FormatUint(uint64(c.userID), 10),
		Username: c.username,
		Status:   "connected",
	})
}

// readPump processes the connection's inbound events strictly in the order
// received. Each connection has its own pump goroutine, so one connection's
// blocking store lookups never stall another's events.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.shutdown()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("websocket read error", "clientID", c.id, "userID", c.userID, "error", err)
			} else {
				slog.Debug("websocket closed", "clientID", c.id, "userID", c.userID, "error", err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			slog.Warn("malformed event", "clientID", c.id, "userID", c.userID, "error", err)
			c.sendError("INVALID_EVENT", "invalid event format")
			continue
		}

		c.handleEvent(event)
	}
}

func (c *Client) handleEvent(event Event) {
	switch event.Type {
	case EventRoomJoin:
		var p JoinPayload
		if err := json.Unmarshal(event.Data, &p); err != nil {
			slog.Warn("malformed join payload", "clientID", c.id, "error", err)
			c.sendError("INVALID_EVENT", "invalid join payload")
			return
		}
		c.co.HandleJoin(c, p)

	case EventRoomMessage:
		var p SendPayload
		if err := json.Unmarshal(event.Data, &p); err != nil {
			slog.Warn("malformed message payload", "clientID", c.id, "error", err)
			c.sendError("INVALID_EVENT", "invalid message payload")
			return
		}
		c.co.HandleSend(c.ctx, c, p)

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+string(event.Type))
	}
}

// writePump drains the send buffer to the peer and keeps the connection
// alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.shutdown()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("websocket write failed", "clientID", c.id, "userID", c.userID, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
