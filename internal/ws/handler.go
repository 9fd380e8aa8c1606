package ws

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewHandler(hub *Hub, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger.Named("ws"),
	}
}

// HandleMatchesWS upgrades an authenticated request. The user id must already
// be set by the auth middleware under userKey.
func (h *Handler) HandleMatchesWS(userKey string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if h == nil || h.hub == nil {
			return fiber.ErrServiceUnavailable
		}
		userID, ok := c.Locals(userKey).(uuid.UUID)
		if !ok || userID == uuid.Nil {
			return fiber.ErrUnauthorized
		}

		upgrade := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := h.upgrader.Upgrade(w, r, nil)
			if err != nil {
				h.logger.Warn("ws upgrade failed", zap.Error(err))
				return
			}
			client := NewClient(h.hub, conn, userID)
			h.hub.Register(client)
			go client.WritePump()
			go client.ReadPump()
		})
		return upgrade(c)
	}
}
