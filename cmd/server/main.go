// main.go
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

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/agrilearn/internal/config"
	"github.com/localnerve/agrilearn/internal/database"
	"github.com/localnerve/agrilearn/internal/events"
	"github.com/localnerve/agrilearn/internal/handlers"
	"github.com/localnerve/agrilearn/internal/jobs"
	"github.com/localnerve/agrilearn/internal/logger"
	"github.com/localnerve/agrilearn/internal/media"
	"github.com/localnerve/agrilearn/internal/middleware"
	"github.com/localnerve/agrilearn/internal/notify"
	"github.com/localnerve/agrilearn/internal/services"
	"github.com/localnerve/agrilearn/internal/utils"

	_ "github.com/localnerve/agrilearn/docs/api" // Swagger docs
)

// @title AgriLearn API
// @version 1.0.0
// @description Courses, progress, certificates, discussion feeds and a marketplace for farmers
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/agrilearn
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer lg.Sync()

	db, err := database.Connect(cfg, lg)
	if err != nil {
		lg.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		lg.Fatal("Failed to run migrations", "error", err)
	}
	if err := database.SeedRoles(db); err != nil {
		lg.Fatal("Failed to seed roles", "error", err)
	}

	ctx := context.Background()
	deps := &handlers.Deps{
		Config:     cfg,
		DB:         db,
		Log:        lg,
		Signer:     middleware.NewSigner(cfg.JWTSecret, cfg.TokenTTL),
		Identities: services.NewIdentityGenerator(db, cfg.IdentityMaxAttempts, lg),
		Scope:      services.CompletionScope(cfg.CompletionScope),
		BcryptCost: cfg.BcryptCost,
		Events:     newPublisher(cfg, lg),
		Mailer:     newMailer(cfg, lg),
	}
	defer deps.Events.Close()

	if cfg.MediaBucket != "" {
		uploader, err := media.NewGCSUploader(ctx, media.Config{
			Bucket:        cfg.MediaBucket,
			PublicBaseURL: cfg.MediaPublicBaseURL,
			Endpoint:      cfg.MediaEndpoint,
		}, lg)
		if err != nil {
			lg.Fatal("Failed to create media uploader", "error", err)
		}
		defer uploader.Close()
		deps.Uploader = uploader
	} else {
		lg.Warn("MEDIA_BUCKET not set, media posts are disabled")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: utils.ErrorResponse,
		BodyLimit:    32 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(lg))
	app.Use(compress.New())

	prometheus := fiberprometheus.New("agrilearn")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	app.Get("/swagger/*", swagger.HandlerDefault)

	handlers.RegisterRoutes(app, deps)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "[404] Resource Not Found")
	})

	scheduler, err := jobs.NewScheduler(db, cfg.LiveSessionSweep, lg)
	if err != nil {
		lg.Fatal("Failed to create scheduler", "error", err)
	}
	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		lg.Info("Gracefully shutting down...")
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		scheduler.Stop(stopCtx)
		_ = app.ShutdownWithContext(stopCtx)
	}()

	lg.Info("Starting server", "port", cfg.Port, "db", cfg.DBType, "scope", cfg.CompletionScope)
	if err := app.Listen(":" + cfg.Port); err != nil {
		lg.Fatal("Failed to start server", "error", err)
	}

	lg.Info("Server stopped")
}

// newPublisher connects the redis event bus, falling back to the log when it is
// not configured or unreachable at startup.
func newPublisher(cfg *config.Config, lg *logger.Logger) events.Publisher {
	if cfg.RedisAddr == "" {
		return events.NewLogPublisher(lg)
	}
	pub, err := events.NewRedisPublisher(cfg.RedisAddr, cfg.RedisChannel, lg)
	if err != nil {
		lg.Warn("Redis unavailable, events go to the log", "addr", cfg.RedisAddr, "error", err)
		return events.NewLogPublisher(lg)
	}
	return pub
}

func newMailer(cfg *config.Config, lg *logger.Logger) notify.Mailer {
	if cfg.SendgridAPIKey == "" {
		return notify.NewLogMailer(lg)
	}
	return notify.NewSendgridMailer(cfg.SendgridAPIKey, cfg.MailFrom, lg)
}
