package handler

import (
	"context"
	"time"

	"candidate-match/internal/aiservice"
	"candidate-match/internal/delivery/http/dto"
	"candidate-match/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type AIHealthChecker interface {
	AIHealth(ctx context.Context) aiservice.Health
}

// HealthHandler reports dependency status. Redis is optional, so its outage
// never flips the overall status.
type HealthHandler struct {
	db      Pinger
	redis   Pinger
	ai      AIHealthChecker
	timeout time.Duration
}

func NewHealthHandler(db Pinger, redis Pinger, ai AIHealthChecker) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, ai: ai, timeout: 3 * time.Second}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	out := dto.HealthResponse{Status: "ok", Checks: map[string]string{}}

	out.Checks["database"] = checkPing(ctx, h.db)
	if out.Checks["database"] != "ok" {
		out.Status = "degraded"
	}
	out.Checks["redis"] = checkPing(ctx, h.redis)

	if h.ai != nil {
		out.AIService = h.ai.AIHealth(ctx)
	} else {
		out.AIService = aiservice.Health{Status: aiservice.StatusUnhealthy, Message: "AI service unavailable: not configured"}
	}

	status := fiber.StatusOK
	if out.Status != "ok" {
		status = fiber.StatusServiceUnavailable
	}
	return response.Success(c, status, out.Status, out)
}

func checkPing(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "ok"
}
