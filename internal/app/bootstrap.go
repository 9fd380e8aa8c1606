package app

import (
	"context"
	"fmt"
	"strings"

	"candidate-match/internal/config"
	"candidate-match/internal/delivery/http/handler"
	"candidate-match/internal/delivery/http/middleware"
	"candidate-match/internal/delivery/http/routes"
	v1 "candidate-match/internal/delivery/http/routes/v1"
	"candidate-match/internal/ws"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName: c.Config.App.AppName,
	})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap builds the container, applies migrations and starts background
// workers. The returned cleanup drains runs and closes connections.
func Bootstrap(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, func(context.Context) error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	applied, err := c.Migrate(ctx)
	if err != nil {
		_ = c.Close(ctx)
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("migrations applied", zap.Int("count", applied))

	c.StartBackground(context.Background())

	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *zap.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil || c == nil {
		return
	}

	health := handler.NewHealthHandler(c.DB, c.Redis, c.Matching)
	routes.NewRegistry(health, v1.Deps{
		Auth:    middleware.NewAuthMiddleware(c.JWT),
		Matches: handler.NewMatchHandler(c.Matching, c.Runner, c.Export),
		WS:      ws.NewHandler(c.Hub, c.Logger),
	}).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
