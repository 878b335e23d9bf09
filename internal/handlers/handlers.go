// Package handlers wires the relay hub into the HTTP router.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pianoworks/shantyman/internal/websocket"
	"pianoworks/shantyman/pkg/logging"
)

// RelayHandlers contains the HTTP handlers for the service
type RelayHandlers struct {
	hub    *websocket.Hub
	logger logging.Logger
}

// NewRelayHandlers creates a new handlers instance
func NewRelayHandlers(hub *websocket.Hub, logger logging.Logger) *RelayHandlers {
	return &RelayHandlers{
		hub:    hub,
		logger: logger,
	}
}

// HandleWebSocket serves the relay's WebSocket endpoint
func (h *RelayHandlers) HandleWebSocket(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request)
}

// HandleNotFound provides a custom 404 handler
func (h *RelayHandlers) HandleNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":   "not_found",
		"service": "shantyman",
		"message": "Endpoint not found",
	})
}
