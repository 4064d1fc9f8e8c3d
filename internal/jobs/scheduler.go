// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/localnerve/agrilearn/internal/logger"
	"github.com/localnerve/agrilearn/internal/services"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Scheduler owns the cron runner
type Scheduler struct {
	cron *cron.Cron
	db   *gorm.DB
	log  *logger.Logger
	now  func() time.Time
}

// NewScheduler registers the live session sweep on spec (standard cron or "@every" syntax)
func NewScheduler(db *gorm.DB, spec string, log *logger.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(),
		db:   db,
		log:  log.With("service", "Scheduler"),
		now:  time.Now,
	}
	if _, err := s.cron.AddFunc(spec, s.SweepLiveSessions); err != nil {
		return nil, fmt.Errorf("invalid live session sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the schedule in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop waits for a running job to finish or ctx to end
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

// SweepLiveSessions deactivates every expired live session
func (s *Scheduler) SweepLiveSessions() {
	n, err := services.DeactivateExpiredSessions(s.db, s.now().UTC())
	if err != nil {
		s.log.Error("live session sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("live sessions expired", "count", n)
	}
}
