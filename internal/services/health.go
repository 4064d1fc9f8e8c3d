package services

import (
	"context"
	"fmt"
	"time"

	"github.com/localnerve/agrilearn/internal/config"
	"github.com/localnerve/agrilearn/internal/logger"
	"github.com/localnerve/agrilearn/internal/utils"
	"gorm.io/gorm"
)

// Pinger is a dependency that can report its own reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Events       string            `json:"events"`
	Media        string            `json:"media"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

const pingTimeout = 1500 * time.Millisecond

// HealthCheck checks the database, the event bus and the media host.
// The event bus and media host count as "disabled" when not configured.
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, events Pinger, log *logger.Logger) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Events:  "disabled",
		Media:   "disabled",
		Details: make(map[string]string),
	}
	fail := func(component, state string, err error) string {
		result.Status = "unhealthy"
		result.Details[component+"_error"] = err.Error()
		msg := fmt.Sprintf("%s %s: %v", component, state, err)
		if result.ErrorMessage == "" {
			result.ErrorMessage = msg
		} else {
			result.ErrorMessage += "; " + msg
		}
		log.Warn("health check failed", "component", component, "error", err)
		return state
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	sqlDB, err := db.DB()
	if err != nil {
		result.Database = fail("database", "error", err)
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = fail("database", "unreachable", err)
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
	}

	if cfg.RedisAddr != "" && events != nil {
		if err := events.Ping(ctx); err != nil {
			result.Events = fail("events", "unreachable", err)
		} else {
			result.Events = "ok"
		}
	}

	if cfg.MediaEndpoint != "" {
		if err := utils.PingService(cfg.MediaEndpoint, pingTimeout); err != nil {
			result.Media = fail("media", "unreachable", err)
		} else {
			result.Media = "ok"
		}
	} else if cfg.MediaBucket != "" {
		result.Media = "ok"
	}

	if result.Status == "healthy" {
		log.Debug("health check passed")
	}
	return result
}
