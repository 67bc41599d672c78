package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"relay-service/internal/audit"
)

// stubVerifier resolves a few fixed tokens so handshake tests can exercise
// every refusal path without a real credential service.
type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	switch token {
	case "":
		return nil, ErrMissingCredential
	case "expired-token":
		return nil, ErrExpiredCredential
	case "alice-token":
		return &Identity{UserID: 1, Username: "alice"}, nil
	case "bob-token":
		return &Identity{UserID: 2, Username: "bob"}, nil
	default:
		return nil, ErrInvalidCredential
	}
}

type relayFixture struct {
	hub     *Hub
	store   *fakeBlockStore
	auditor *fakePublisher
	server  *httptest.Server
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()

	hub := NewHub()
	store := newFakeBlockStore()
	auditor := &fakePublisher{}
	co := NewCoordinator(hub, NewDeliveryFilter(store), auditor)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, co, stubVerifier{}, auditor, w, r)
	}))
	t.Cleanup(server.Close)

	return &relayFixture{hub: hub, store: store, auditor: auditor, server: server}
}

func (f *relayFixture) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(f.server.URL, "http")
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readEvent reads the next frame and decodes the envelope.
func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		t.Fatalf("frame does not decode: %v", err)
	}
	return event
}

func writeEvent(t *testing.T, conn *websocket.Conn, eventType EventType, payload any) {
	t.Helper()

	data, err := NewEvent(eventType, payload)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

// expectClose asserts the server refused the connection with the given close
// code and reason.
func expectClose(t *testing.T, conn *websocket.Conn, code int, reason string) {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	if !ok {
		t.Fatalf("expected close error, got %v", err)
	}
	if closeErr.Code != code {
		t.Errorf("close code = %d, want %d", closeErr.Code, code)
	}
	if closeErr.Text != reason {
		t.Errorf("close reason = %q, want %q", closeErr.Text, reason)
	}
}

func TestHandshakeRefusesMissingCredential(t *testing.T) {
	f := newRelayFixture(t)

	conn := f.dial(t, "")
	expectClose(t, conn, CloseCredentialMissing, "credential_missing")

	if f.hub.ClientCount() != 0 {
		t.Error("refused connection must not be registered")
	}
	refused := f.auditor.byKind(audit.KindConnectionRefused)
	if len(refused) != 1 || refused[0].Reason != "credential_missing" {
		t.Errorf("unexpected refusal audit trail %+v", refused)
	}
}

func TestHandshakeRefusesInvalidCredential(t *testing.T) {
	f := newRelayFixture(t)

	conn := f.dial(t, "garbage")
	expectClose(t, conn, CloseCredentialInvalid, "credential_invalid")

	if f.hub.ClientCount() != 0 {
		t.Error("refused connection must not be registered")
	}
}

func TestHandshakeRefusesExpiredCredential(t *testing.T) {
	f := newRelayFixture(t)

	conn := f.dial(t, "expired-token")
	expectClose(t, conn, CloseCredentialExpired, "credential_expired")
}

func TestHandshakeAdmitsAndAcks(t *testing.T) {
	f := newRelayFixture(t)

	conn := f.dial(t, "alice-token")

	event := readEvent(t, conn)
	if event.Type != EventConnectionAck {
		t.Fatalf("first event type = %s, want %s", event.Type, EventConnectionAck)
	}
	var ack AckPayload
	if err := json.Unmarshal(event.Data, &ack); err != nil {
		t.Fatalf("ack payload does not decode: %v", err)
	}
	if ack.UserID != "1" || ack.Username != "alice" || ack.Status != "connected" {
		t.Errorf("unexpected ack %+v", ack)
	}
	if ack.ClientID == "" {
		t.Error("ack missing connection id")
	}

	admitted := f.auditor.byKind(audit.KindConnectionAdmitted)
	if len(admitted) != 1 || admitted[0].UserID != 1 {
		t.Errorf("unexpected admission audit trail %+v", admitted)
	}
}

func TestEndToEndRelayWithBlock(t *testing.T) {
	f := newRelayFixture(t)
	f.store.block(2, 1) // bob has blocked alice

	alice := f.dial(t, "alice-token")
	bob := f.dial(t, "bob-token")
	readEvent(t, alice) // ack
	readEvent(t, bob)   // ack

	writeEvent(t, alice, EventRoomJoin, JoinPayload{RoomID: "general"})
	writeEvent(t, bob, EventRoomJoin, JoinPayload{RoomID: "general"})

	// Joins are processed on each connection's own read loop; wait for both
	// memberships before sending.
	deadline := time.Now().Add(2 * time.Second)
	for len(f.hub.MembersOf("general")) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for room membership")
		}
		time.Sleep(5 * time.Millisecond)
	}

	writeEvent(t, alice, EventRoomMessage, SendPayload{RoomID: "general", Content: "hello"})

	// Alice gets her own echo back.
	event := readEvent(t, alice)
	if event.Type != EventRoomMessage {
		t.Fatalf("event type = %s, want %s", event.Type, EventRoomMessage)
	}
	var msg OutboundMessage
	if err := json.Unmarshal(event.Data, &msg); err != nil {
		t.Fatalf("message payload does not decode: %v", err)
	}
	if msg.Content != "hello" || msg.Sender.ID != "1" || msg.Sender.Username != "alice" {
		t.Errorf("unexpected echo %+v", msg)
	}

	// The fanout pass that produced the echo already decided bob's delivery,
	// so a short read window is enough to observe the suppression.
	bob.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := bob.ReadMessage(); err == nil {
		t.Error("blocking recipient received a message")
	}

	suppressed := f.auditor.byKind(audit.KindDeliverySuppressed)
	if len(suppressed) != 1 || suppressed[0].UserID != 2 || suppressed[0].PeerID != 1 {
		t.Errorf("unexpected suppression audit trail %+v", suppressed)
	}
}

func TestUnknownEventGetsErrorReply(t *testing.T) {
	f := newRelayFixture(t)

	conn := f.dial(t, "alice-token")
	readEvent(t, conn) // ack

	writeEvent(t, conn, EventType("room.rename"), JoinPayload{RoomID: "general"})

	event := readEvent(t, conn)
	if event.Type != EventError {
		t.Fatalf("event type = %s, want %s", event.Type, EventError)
	}
	var p ErrorPayload
	if err := json.Unmarshal(event.Data, &p); err != nil {
		t.Fatalf("error payload does not decode: %v", err)
	}
	if p.Code != "UNKNOWN_EVENT" {
		t.Errorf("error code = %q, want UNKNOWN_EVENT", p.Code)
	}
}

func TestDisconnectCleansUpMemberships(t *testing.T) {
	f := newRelayFixture(t)

	conn := f.dial(t, "alice-token")
	readEvent(t, conn) // ack
	writeEvent(t, conn, EventRoomJoin, JoinPayload{RoomID: "general"})

	deadline := time.Now().Add(2 * time.Second)
	for len(f.hub.MembersOf("general")) < 1 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for room membership")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for f.hub.ClientCount() != 0 || len(f.hub.MembersOf("general")) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("cleanup incomplete: %d clients, %d members",
				f.hub.ClientCount(), len(f.hub.MembersOf("general")))
		}
		time.Sleep(5 * time.Millisecond)
	}
}
