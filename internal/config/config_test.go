package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", "")
	t.Setenv("DB_DATABASE", "agrilearn")
	t.Setenv("DB_USER", "agri")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("Expected default port 3000, got %s", cfg.Port)
	}
	if cfg.CompletionScope != CompletionScopeCourse {
		t.Errorf("Expected course completion scope, got %s", cfg.CompletionScope)
	}
	if cfg.IdentityMaxAttempts != 100 {
		t.Errorf("Expected 100 identity attempts, got %d", cfg.IdentityMaxAttempts)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("Expected 24h token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("Expected bcrypt cost 10, got %d", cfg.BcryptCost)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Expected an error without JWT_SECRET")
	}
}

func TestLoadSqliteNeedsNoUser(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_USER", "")

	if _, err := Load(); err != nil {
		t.Fatalf("Expected sqlite without DB_USER to load, got %v", err)
	}
}

func TestLoadCompletionScope(t *testing.T) {
	setRequired(t)

	t.Setenv("COMPLETION_SCOPE", "Learner")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CompletionScope != CompletionScopeLearner {
		t.Errorf("Expected learner scope, got %s", cfg.CompletionScope)
	}

	t.Setenv("COMPLETION_SCOPE", "cohort")
	if _, err := Load(); err == nil {
		t.Error("Expected an error for an unknown completion scope")
	}
}

func TestGetEnvAsDurationFallsBack(t *testing.T) {
	t.Setenv("TOKEN_TTL", "not-a-duration")
	if got := getEnvAsDuration("TOKEN_TTL", time.Minute); got != time.Minute {
		t.Errorf("Expected fallback of 1m, got %s", got)
	}
}
