// config.go
//
// AgriLearn, a course, community and marketplace service for farmers
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of agrilearn.
// agrilearn is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// agrilearn is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with agrilearn.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Completion scopes
const (
	CompletionScopeCourse  = "course"
	CompletionScopeLearner = "learner"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port    string
	LogMode string

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlserver, etc.
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Session configuration
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	// Learning configuration
	CompletionScope     string
	IdentityMaxAttempts int

	// Event bus, empty address disables redis publishing
	RedisAddr    string
	RedisChannel string

	// Media host
	MediaBucket        string
	MediaPublicBaseURL string
	MediaEndpoint      string

	// Mail
	SendgridAPIKey string
	MailFrom       string

	// Scheduled jobs
	LiveSessionSweep string
}

// Load loads configuration from environment variables, reading a .env file first when present
func Load() (*Config, error) {
	if envFile := getEnv("ENV_FILE", ".env"); envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
			}
		}
	}

	cfg := &Config{
		Port:                getEnv("PORT", "3000"),
		LogMode:             getEnv("LOG_MODE", "prod"),
		DBType:              getEnv("DB_TYPE", "mysql"),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "3306"),
		DBDatabase:          getEnv("DB_DATABASE", ""),
		DBUser:              getEnv("DB_USER", ""),
		DBPassword:          getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:   getEnvAsInt("DB_CONNECTION_LIMIT", 10),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		TokenTTL:            getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
		BcryptCost:          getEnvAsInt("BCRYPT_COST", 10),
		CompletionScope:     strings.ToLower(getEnv("COMPLETION_SCOPE", CompletionScopeCourse)),
		IdentityMaxAttempts: getEnvAsInt("IDENTITY_MAX_ATTEMPTS", 100),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisChannel:        getEnv("REDIS_CHANNEL", "agrilearn.events"),
		MediaBucket:         getEnv("MEDIA_BUCKET", ""),
		MediaPublicBaseURL:  getEnv("MEDIA_PUBLIC_BASE_URL", ""),
		MediaEndpoint:       getEnv("MEDIA_ENDPOINT", ""),
		SendgridAPIKey:      getEnv("SENDGRID_API_KEY", ""),
		MailFrom:            getEnv("MAIL_FROM", "no-reply@agrilearn.local"),
		LiveSessionSweep:    getEnv("LIVE_SESSION_SWEEP", "@every 1m"),
	}

	// Validate required fields
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.DBType != "sqlite" && cfg.DBUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.CompletionScope != CompletionScopeCourse && cfg.CompletionScope != CompletionScopeLearner {
		return nil, fmt.Errorf("COMPLETION_SCOPE must be %q or %q, got %q",
			CompletionScopeCourse, CompletionScopeLearner, cfg.CompletionScope)
	}
	if cfg.IdentityMaxAttempts < 1 {
		return nil, fmt.Errorf("IDENTITY_MAX_ATTEMPTS must be positive")
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(strings.TrimSpace(valueStr))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
