package websocket

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	hub *Hub
}

func NewHandler() *Handler {
	hub := NewHub()
	go hub.Run()

	return &Handler{
		hub: hub,
	}
}

// HandleWebSocket upgrades the connection and registers a heatmap viewer.
// Viewers join region rooms through join_room messages after connecting.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(h.hub, conn, uuid.New().String())
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// SendRegionUpdate pushes a demand update to viewers watching a region.
func (h *Handler) SendRegionUpdate(regionID string, updateType string, data map[string]interface{}) {
	h.hub.BroadcastToRoom("region_"+regionID, updateType, data)
}

// SendGlobalUpdate pushes a demand update to every connected viewer.
func (h *Handler) SendGlobalUpdate(updateType string, data map[string]interface{}) {
	h.hub.BroadcastToAll(updateType, data)
}

func (h *Handler) GetHub() *Hub {
	return h.hub
}
