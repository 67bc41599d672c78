package relay

import (
	"context"
	"errors"
	"sync"
	"time"

	"relay-service/internal/audit"
)

// mockConn implements the Conn interface for tests.
type mockConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

var errConnClosed = errors.New("connection closed")

func (m *mockConn) ReadMessage() (int, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, nil, errConnClosed
	}
	return 1, []byte(`{"type":"room.join","data":{"roomId":"noop"}}`), nil
}

func (m *mockConn) WriteMessage(_ int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errConnClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockConn) SetReadLimit(int64)                {}
func (m *mockConn) SetReadDeadline(time.Time) error   { return nil }
func (m *mockConn) SetWriteDeadline(time.Time) error  { return nil }
func (m *mockConn) SetPongHandler(func(string) error) {}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// fakeBlockStore serves canned block sets and can fail per user.
type fakeBlockStore struct {
	mu      sync.Mutex
	blocked map[uint]map[uint]struct{} // blocker -> blocked set
	failFor map[uint]bool
}

func newFakeBlockStore() *fakeBlockStore {
	return &fakeBlockStore{
		blocked: make(map[uint]map[uint]struct{}),
		failFor: make(map[uint]bool),
	}
}

func (s *fakeBlockStore) block(blocker, blocked uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blocked[blocker] == nil {
		s.blocked[blocker] = make(map[uint]struct{})
	}
	s.blocked[blocker][blocked] = struct{}{}
}

func (s *fakeBlockStore) unblock(blocker, blocked uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blocked[blocker], blocked)
}

func (s *fakeBlockStore) failUser(userID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failFor[userID] = true
}

func (s *fakeBlockStore) BlockedIDs(_ context.Context, userID uint) (map[uint]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[userID] {
		return nil, errors.New("store unavailable")
	}
	out := make(map[uint]struct{}, len(s.blocked[userID]))
	for id := range s.blocked[userID] {
		out[id] = struct{}{}
	}
	return out, nil
}

// fakePublisher records audit events in memory.
type fakePublisher struct {
	mu     sync.Mutex
	events []audit.Event
}

func (p *fakePublisher) Publish(_ context.Context, event audit.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) byKind(kind audit.Kind) []audit.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []audit.Event
	for _, e := range p.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func newTestClient(hub *Hub, co *Coordinator, userID uint, username string) *Client {
	return NewClient(hub, co, &mockConn{}, Identity{UserID: userID, Username: username})
}

// drain empties a client's send buffer, returning the queued events.
func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case data := <-c.send:
			out = append(out, data)
		default:
			return out
		}
	}
}
