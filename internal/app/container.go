package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"candidate-match/internal/aiservice"
	"candidate-match/internal/config"
	"candidate-match/internal/database"
	"candidate-match/internal/database/migration"
	dbpostgres "candidate-match/internal/database/postgres"
	"candidate-match/internal/domain/matching"
	"candidate-match/internal/export"
	"candidate-match/internal/infrastructure/cache"
	"candidate-match/internal/pkg/jwt"
	"candidate-match/internal/repository"
	"candidate-match/internal/usecase"
	"candidate-match/internal/ws"
	"candidate-match/migrations"

	"go.uber.org/zap"
)

const lockTTL = 5 * time.Minute

// Container owns every long-lived dependency. The HTTP server and matchctl
// both build one.
type Container struct {
	Config config.Config
	Logger *zap.Logger

	DB    database.DB
	Redis *cache.Redis
	AI    *aiservice.Client
	JWT   *jwt.HMACService

	Jobs       repository.JobRepository
	Candidates repository.CandidateRepository

	Store        *usecase.MatchResultStore
	Orchestrator *usecase.BatchMatchOrchestrator
	Runner       *usecase.MatchingRunner
	Matching     *usecase.MatchingService
	Sweeper      *usecase.RetentionSweeper
	Export       *export.Service

	Hub      *ws.Hub
	Notifier *ws.Notifier

	stopBackground context.CancelFunc
}

func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Database.Configured() {
		return nil, errors.New("database not configured: DB_HOST and DB_NAME are required")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, cfg.Database, cfg.App.AppName, logger)
	if err != nil {
		return nil, err
	}

	ai, err := aiservice.NewClient(aiservice.Config{
		BaseURL: cfg.AIService.URL,
		Enabled: cfg.AIService.Enabled,
		Timeout: cfg.AIService.Timeout,
	}, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ai service client: %w", err)
	}

	c := &Container{
		Config:     cfg,
		Logger:     logger,
		DB:         db,
		Redis:      cache.NewRedis(connectCtx, cfg.Redis, logger),
		AI:         ai,
		JWT:        jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiresIn),
		Jobs:       repository.NewPostgresJobRepository(db),
		Candidates: repository.NewPostgresCandidateRepository(db),
	}

	engine := matching.NewEngine()

	c.Store = usecase.NewMatchResultStore(
		repository.NewPostgresMatchResultRepository(db),
		usecase.NewDistributedJobLocker(c.Redis, lockTTL, logger),
		c.Redis,
		usecase.StoreOptions{Retention: cfg.Matching.Retention, CacheTTL: cfg.Redis.TTL},
		logger,
	)

	c.Hub = ws.NewHub(logger)
	c.Notifier = ws.NewNotifier(c.Hub)

	scorer := usecase.NewScorer(cfg.Matching.Scorer, engine, ai, logger)
	c.Orchestrator = usecase.NewBatchMatchOrchestrator(c.Candidates, scorer, c.Store, c.Notifier, usecase.OrchestratorConfig{
		Workers:          cfg.Matching.Workers,
		CandidateTimeout: cfg.Matching.CandidateTimeout,
		RateLimitRPS:     rateLimitFor(cfg),
	}, logger)
	c.Runner = usecase.NewMatchingRunner(c.Jobs, c.Candidates, c.Orchestrator, cfg.Matching.MaxConcurrentBatches, logger)
	c.Matching = usecase.NewMatchingService(c.Jobs, c.Candidates, c.Store, ai, engine, logger)
	c.Sweeper = usecase.NewRetentionSweeper(c.Jobs, c.Store, cfg.Matching.Retention, cfg.Matching.SweepInterval, logger)
	c.Export = export.NewService(c.Matching, logger)

	return c, nil
}

// rateLimitFor only throttles workers when they call out to the AI service.
func rateLimitFor(cfg config.Config) int {
	if cfg.Matching.Scorer != config.ScorerAI {
		return 0
	}
	return cfg.AIService.RateLimitRPS
}

func (c *Container) Migrate(ctx context.Context) (int, error) {
	r := migration.Runner{Dir: c.Config.Database.MigrationsDir, FS: migrations.FS, Logger: c.Logger}
	return r.Run(ctx, c.DB.SQLDB())
}

// StartBackground runs the websocket hub and the retention sweeper until Close.
func (c *Container) StartBackground(ctx context.Context) {
	if c == nil || c.stopBackground != nil {
		return
	}
	bg, cancel := context.WithCancel(ctx)
	c.stopBackground = cancel
	go c.Hub.Run(bg)
	c.Sweeper.Start(bg)
}

// Close drains in-flight runs before releasing the hub, redis and the pool.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Runner != nil {
		if err := c.Runner.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("matching runner: %w", err))
		}
	}
	if c.stopBackground != nil {
		c.stopBackground()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	return errors.Join(errs...)
}
