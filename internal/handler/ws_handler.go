package handler

import (
	"github.com/gin-gonic/gin"

	"relay-service/internal/audit"
	"relay-service/internal/relay"
)

type WSHandler struct {
	hub      *relay.Hub
	co       *relay.Coordinator
	verifier relay.CredentialVerifier
	auditor  audit.Publisher
}

func NewWSHandler(hub *relay.Hub, co *relay.Coordinator, verifier relay.CredentialVerifier, auditor audit.Publisher) *WSHandler {
	return &WSHandler{hub: hub, co: co, verifier: verifier, auditor: auditor}
}

// HandleWebSocket godoc
// @Summary Relay connection
// @Description Upgrade to WebSocket and authenticate with the token query parameter. Refused connections are closed with codes 4001 (credential_missing), 4002 (credential_invalid), or 4003 (credential_expired).
// @Tags relay
// @Param token query string false "Bearer credential"
// @Success 101 "Switching Protocols"
// @Router /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	relay.ServeWS(h.hub, h.co, h.verifier, h.auditor, c.Writer, c.Request)
}
