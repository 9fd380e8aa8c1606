package config

import (
	"errors"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "candidate-match")
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_PORT", "8080")
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_PORT", "")

	_, err := Load()
	if !errors.Is(err, errMissingRequiredEnv) {
		t.Fatalf("expected errMissingRequiredEnv, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("MATCH_SCORER", "")
	t.Setenv("MATCH_RETENTION", "")
	t.Setenv("AI_SERVICE_URL", "")
	t.Setenv("AI_SERVICE_ENABLED", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Matching.Scorer != ScorerLocal {
		t.Fatalf("scorer: got %q", cfg.Matching.Scorer)
	}
	if cfg.Matching.Retention != 7*24*time.Hour {
		t.Fatalf("retention: got %v", cfg.Matching.Retention)
	}
	if cfg.AIService.URL != "http://localhost:8000" || !cfg.AIService.Enabled {
		t.Fatalf("unexpected AI service config %+v", cfg.AIService)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	setRequired(t)
	t.Setenv("MATCH_SCORER", "remote")
	t.Setenv("MATCH_WORKERS", "many")

	_, err := Load()
	if !errors.Is(err, errInvalidEnv) {
		t.Fatalf("expected errInvalidEnv, got %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("MATCH_SCORER", "AI")
	t.Setenv("MATCH_WORKERS", "3")
	t.Setenv("MATCH_CANDIDATE_TIMEOUT", "2s")
	t.Setenv("AI_SERVICE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Matching.Scorer != ScorerAI || cfg.Matching.Workers != 3 || cfg.Matching.CandidateTimeout != 2*time.Second {
		t.Fatalf("unexpected matching config %+v", cfg.Matching)
	}
	if cfg.AIService.Enabled {
		t.Fatalf("expected AI service disabled")
	}
}

func TestLoad_AITimeoutFitsCandidateBudget(t *testing.T) {
	setRequired(t)
	t.Setenv("MATCH_SCORER", "ai")
	t.Setenv("AI_SERVICE_ENABLED", "true")
	t.Setenv("AI_SERVICE_TIMEOUT", "30s")
	t.Setenv("MATCH_CANDIDATE_TIMEOUT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Matching.CandidateTimeout <= cfg.AIService.Timeout {
		t.Fatalf("candidate timeout %v must exceed AI timeout %v", cfg.Matching.CandidateTimeout, cfg.AIService.Timeout)
	}

	t.Setenv("MATCH_CANDIDATE_TIMEOUT", "10s")
	if _, err := Load(); !errors.Is(err, errInvalidEnv) {
		t.Fatalf("expected errInvalidEnv for AI timeout above candidate timeout, got %v", err)
	}

	t.Setenv("MATCH_SCORER", "local")
	if _, err := Load(); err != nil {
		t.Fatalf("local scoring ignores the AI timeout, got %v", err)
	}
}
