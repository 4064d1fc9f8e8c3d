package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/metrics"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/types"
	"github.com/localnerve/agrilearn/internal/validation"
	"gorm.io/gorm"
)

// Live session length bounds, in minutes
const (
	MinSessionMinutes = 15
	MaxSessionMinutes = 180
)

// LiveSessionInput is the body of a new live session
type LiveSessionInput struct {
	Title           string    `json:"title" validate:"required,min=3,max=255"`
	Description     string    `json:"description" validate:"max=1024"`
	MeetingURL      string    `json:"meetingUrl" validate:"omitempty,url"`
	ScheduledAt     time.Time `json:"scheduledAt" validate:"required"`
	DurationMinutes int       `json:"duration" validate:"gte=15,lte=180"`
}

// CreateLiveSession schedules a session hosted by the actor. Admins and investors only.
func CreateLiveSession(db *gorm.DB, actor Actor, in LiveSessionInput, now time.Time) (*models.LiveSession, error) {
	if !actor.IsAdmin() && actor.UserType != models.UserTypeInvestor {
		return nil, types.Forbidden("livesession.authorization", "Only admins and investors can host live sessions")
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validation.Struct("livesession.validation", in); err != nil {
		return nil, err
	}
	if !in.ScheduledAt.After(now) {
		return nil, types.ValidationFailed("livesession.validation", "Invalid input", map[string]string{
			"scheduledAt": "must be in the future",
		})
	}

	session := models.LiveSession{
		HostID:          actor.UserID,
		Title:           in.Title,
		Description:     in.Description,
		MeetingURL:      in.MeetingURL,
		ScheduledAt:     in.ScheduledAt.UTC(),
		DurationMinutes: in.DurationMinutes,
		IsActive:        true,
	}
	if err := db.Create(&session).Error; err != nil {
		return nil, types.Infrastructure("livesession.create", err)
	}
	return &session, nil
}

// ListLiveSessions deactivates expired sessions, then lists sessions soonest first.
// Investors and admins do not see the sessions they host.
func ListLiveSessions(db *gorm.DB, actor Actor, now time.Time) ([]models.LiveSession, error) {
	if _, err := DeactivateExpiredSessions(db, now); err != nil {
		return nil, err
	}

	q := quiet(db)
	if actor.IsAdmin() || actor.UserType == models.UserTypeInvestor {
		q = q.Where("host_id <> ?", actor.UserID)
	}
	var sessions []models.LiveSession
	if err := q.Order("scheduled_at asc").Order("id asc").Find(&sessions).Error; err != nil {
		return nil, types.Infrastructure("livesession.list", err)
	}
	return sessions, nil
}

// DeactivateExpiredSessions clears the active flag of every session whose
// scheduled end is before now and returns how many were changed.
func DeactivateExpiredSessions(db *gorm.DB, now time.Time) (int64, error) {
	q := quiet(db)

	var candidates []models.LiveSession
	err := q.Select("id", "scheduled_at", "duration_minutes").
		Where("is_active = ? AND scheduled_at < ?", true, now).
		Find(&candidates).Error
	if err != nil {
		return 0, types.Infrastructure("livesession.expire", err)
	}

	var expired []uuid.UUID
	for _, s := range candidates {
		if s.EndsAt().Before(now) {
			expired = append(expired, s.ID)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	res := q.Model(&models.LiveSession{}).Where("id IN ?", expired).Update("is_active", false)
	if res.Error != nil {
		return 0, types.Infrastructure("livesession.expire", res.Error)
	}
	metrics.ExpiredLiveSessions.Add(float64(res.RowsAffected))
	return res.RowsAffected, nil
}
