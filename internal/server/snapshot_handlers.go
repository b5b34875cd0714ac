package server

import (
	"log"

	"github.com/kanishk-8/EcoCircle/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// GetSnapshot handles GET /api/snapshot: the full current content state in
// one read, for UI boot and reconnect reconciliation.
func (s *Server) GetSnapshot(c *fiber.Ctx) error {
	return c.JSON(s.sync.Snapshot())
}

// SnapshotStreamUpgrade rejects non-WebSocket requests on the stream route.
func (s *Server) SnapshotStreamUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// SnapshotStream handles the WebSocket connection pushing state snapshots to
// the UI. The first frame is the current snapshot; afterwards the client gets
// the latest state after each transition, with intermediate states dropped
// when the client reads slowly.
func (s *Server) SnapshotStream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		observability.SnapshotStreamClients.Inc()
		defer observability.SnapshotStreamClients.Dec()

		updates, cancel := s.sync.Subscribe()
		defer cancel()

		if err := conn.WriteJSON(s.sync.Snapshot()); err != nil {
			return
		}

		// Drain the client side so closes surface; the UI never sends data.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				if err := conn.WriteJSON(snap); err != nil {
					log.Printf("snapshot stream write failed: %v", err)
					return
				}
			case <-closed:
				return
			}
		}
	})
}
