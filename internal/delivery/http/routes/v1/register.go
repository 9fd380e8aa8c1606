package v1

import (
	"candidate-match/internal/delivery/http/handler"
	"candidate-match/internal/delivery/http/middleware"
	"candidate-match/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Deps struct {
	Auth    *middleware.AuthMiddleware
	Matches *handler.MatchHandler
	WS      *ws.Handler
}

// Register mounts every v1 route behind bearer authentication.
func Register(r fiber.Router, d Deps) {
	if r == nil || d.Auth == nil {
		return
	}

	protected := r.Group("", d.Auth.Middleware())

	if d.Matches != nil {
		d.Matches.RegisterRoutes(protected)
	}
	if d.WS != nil {
		protected.Get("/ws/matches", d.WS.HandleMatchesWS(middleware.CtxUserIDKey))
	}
}
