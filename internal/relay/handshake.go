package relay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"relay-service/internal/audit"
)

// Identity is a verified user identity bound to a connection at handshake.
type Identity struct {
	UserID   uint
	Username string
}

// CredentialVerifier validates a bearer credential and resolves it to a user
// identity. Implemented by the auth service.
type CredentialVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Verification failures. The handshake maps each to its own close code so a
// client can tell a missing credential from a rejected one.
var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrExpiredCredential = errors.New("expired credential")
)

// Application close codes, in the private range per RFC 6455.
const (
	CloseCredentialMissing = 4001
	CloseCredentialInvalid = 4002
	CloseCredentialExpired = 4003
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1") {
			return true
		}
		for _, allowed := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
			if origin == strings.TrimSpace(allowed) {
				return true
			}
		}
		return false
	},
}

// ServeWS performs the authentication handshake and admits the connection.
//
// The bearer credential arrives out-of-band in the `token` query parameter,
// not as a regular message. Verification runs synchronously before anything
// is admitted; on failure the transport is closed with a reason code and no
// Client object ever exists in the hub. The registry does not retry — the
// client must reconnect with a fresh credential.
func ServeWS(hub *Hub, co *Coordinator, verifier CredentialVerifier, auditor audit.Publisher, w http.ResponseWriter, r *http.Request) {
	if auditor == nil {
		auditor = audit.Nop{}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	token := r.URL.Query().Get("token")
	identity, err := verifier.Verify(r.Context(), token)
	if err != nil {
		code, reason := closeForVerifyError(err)
		slog.Warn("connection refused", "remote", r.RemoteAddr, "reason", reason)
		if err := auditor.Publish(r.Context(), audit.Event{
			Kind:   audit.KindConnectionRefused,
			Reason: reason,
			At:     time.Now().UTC(),
		}); err != nil {
			slog.Debug("audit event dropped", "kind", audit.KindConnectionRefused, "error", err)
		}

		deadline := time.Now().Add(writeWait)
		conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
		conn.Close()
		return
	}

	client := NewClient(hub, co, conn, *identity)
	hub.Register(client)
	slog.Info("connection admitted",
		"clientID", client.id, "userID", client.userID, "username", client.username, "remote", r.RemoteAddr)
	if err := auditor.Publish(r.Context(), audit.Event{
		Kind:         audit.KindConnectionAdmitted,
		UserID:       client.userID,
		ConnectionID: client.id,
		At:           time.Now().UTC(),
	}); err != nil {
		slog.Debug("audit event dropped", "kind", audit.KindConnectionAdmitted, "error", err)
	}

	go client.writePump()
	go client.readPump()

	client.sendAck()
}

func closeForVerifyError(err error) (code int, reason string) {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return CloseCredentialMissing, "credential_missing"
	case errors.Is(err, ErrExpiredCredential):
		return CloseCredentialExpired, "credential_expired"
	default:
		return CloseCredentialInvalid, "credential_invalid"
	}
}
