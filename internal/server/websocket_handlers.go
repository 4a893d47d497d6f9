package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"chirp/internal/models"
)

// WebsocketUpgrade gates the /ws route. The connection must be a websocket
// upgrade and carry a username to subscribe for.
func (s *Server) WebsocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if c.Query("username") == "" {
		return fail(c, models.NewValidationError("username query parameter is required"))
	}
	if s.hub == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Realtime notifications are not available")
	}
	return c.Next()
}

// WebsocketHandler registers the connection with the hub and runs the pumps
// until the client goes away.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		username := conn.Query("username")

		client, err := s.hub.Register(username, conn)
		if err != nil {
			slog.Warn("websocket registration rejected", "username", username, "error", err)
			conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
