package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	AIService AIServiceConfig
	Matching  MatchingConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	LogJSON     bool
	Debug       bool
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration

	MigrationsDir string
}

func (c DatabaseConfig) Configured() bool {
	return c.DBHost != "" && c.DBName != ""
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

type JWTConfig struct {
	AccessSecret    string
	AccessExpiresIn time.Duration
}

type AIServiceConfig struct {
	URL          string
	Enabled      bool
	Timeout      time.Duration
	RateLimitRPS int
}

type MatchingConfig struct {
	// Scorer selects "local" (built-in engine) or "ai" (external service with local fallback).
	Scorer               string
	Workers              int
	CandidateTimeout     time.Duration
	Retention            time.Duration
	MaxConcurrentBatches int
	SweepInterval        time.Duration
}

const (
	ScorerLocal = "local"
	ScorerAI    = "ai"
)

var (
	errMissingRequiredEnv = errors.New("missing required environment variables")
	errInvalidEnv         = errors.New("invalid environment variables")
)

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key, def string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return def
		}
		return v
	}
	optInt := func(key string, def int) int {
		raw := opt(key, "")
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optBool := func(key string, def bool) bool {
		raw := opt(key, "")
		if raw == "" {
			return def
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optDur := func(key string, def time.Duration) time.Duration {
		raw := opt(key, "")
		if raw == "" {
			return def
		}
		v, err := time.ParseDuration(raw)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return def
		}
		return v
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		LogJSON:     optBool("LOG_JSON", false),
		Debug:       optBool("LOG_DEBUG", false),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                opt("DB_HOST", ""),
		DBPort:                opt("DB_PORT", "5432"),
		DBName:                opt("DB_NAME", ""),
		DBUser:                opt("DB_USER", ""),
		DBPassword:            opt("DB_PASSWORD", ""),
		DBSSLMode:             opt("DB_SSL_MODE", "disable"),
		ConnectTimeout:        optDur("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(optInt("DB_POOL_MAX_CONNS", 0)),
		PoolMinConns:          int32(optInt("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   optDur("DB_POOL_MAX_CONN_LIFETIME", 0),
		PoolMaxConnIdleTime:   optDur("DB_POOL_MAX_CONN_IDLE_TIME", 0),
		PoolHealthCheckPeriod: optDur("DB_POOL_HEALTH_CHECK_PERIOD", 0),
		MigrationsDir:         opt("DB_MIGRATIONS_DIR", "migrations"),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST", ""),
		Port:     opt("REDIS_PORT", "6379"),
		Password: opt("REDIS_PASSWORD", ""),
		DB:       optInt("REDIS_DB", 0),
		TTL:      optDur("REDIS_TTL", 10*time.Minute),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:    opt("JWT_ACCESS_SECRET", ""),
		AccessExpiresIn: optDur("JWT_ACCESS_EXPIRES_IN", 15*time.Minute),
	}

	cfg.AIService = AIServiceConfig{
		URL:          opt("AI_SERVICE_URL", "http://localhost:8000"),
		Enabled:      optBool("AI_SERVICE_ENABLED", true),
		Timeout:      optDur("AI_SERVICE_TIMEOUT", 30*time.Second),
		RateLimitRPS: optInt("AI_SERVICE_RATE_LIMIT_RPS", 0),
	}

	scorer := strings.ToLower(opt("MATCH_SCORER", ScorerLocal))
	aiScoring := scorer == ScorerAI && cfg.AIService.Enabled

	if cfg.AIService.Timeout <= 0 {
		cfg.AIService.Timeout = 30 * time.Second
	}

	// Gateway calls must time out inside the per-candidate budget.
	candidateTimeout := 10 * time.Second
	if aiScoring {
		candidateTimeout = cfg.AIService.Timeout + 5*time.Second
	}

	cfg.Matching = MatchingConfig{
		Scorer:               scorer,
		Workers:              optInt("MATCH_WORKERS", 8),
		CandidateTimeout:     optDur("MATCH_CANDIDATE_TIMEOUT", candidateTimeout),
		Retention:            optDur("MATCH_RETENTION", 7*24*time.Hour),
		MaxConcurrentBatches: optInt("MATCH_MAX_CONCURRENT_BATCHES", 2),
		SweepInterval:        optDur("MATCH_SWEEP_INTERVAL", time.Hour),
	}
	if cfg.Matching.Scorer != ScorerLocal && cfg.Matching.Scorer != ScorerAI {
		invalid = append(invalid, "MATCH_SCORER")
	}
	if aiScoring && cfg.AIService.Timeout >= cfg.Matching.CandidateTimeout {
		invalid = append(invalid, "AI_SERVICE_TIMEOUT")
	}
	if cfg.Matching.Workers <= 0 {
		invalid = append(invalid, "MATCH_WORKERS")
	}
	if cfg.Matching.MaxConcurrentBatches <= 0 {
		invalid = append(invalid, "MATCH_MAX_CONCURRENT_BATCHES")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(invalid, ", "))
	}

	return cfg, nil
}
