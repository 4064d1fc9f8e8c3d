package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Actor is the authenticated caller, passed explicitly into every operation that needs it
type Actor struct {
	UserID   uuid.UUID
	Role     string
	UserType string
}

// IsAdmin reports whether the actor holds the Admin role
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// DefaultPageLimit is the page size used when the caller gives none
const DefaultPageLimit = 8

// PageRequest is a 1-based page request
type PageRequest struct {
	Page  int
	Limit int
}

// PageInfo describes the page actually returned
type PageInfo struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalCount      int64 `json:"totalCount"`
	Limit           int   `json:"limit"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// resolvePage clamps the request against total; a page past the end resets to the first page
func resolvePage(total int64, req PageRequest) (PageInfo, int) {
	limit := req.Limit
	if limit < 1 {
		limit = DefaultPageLimit
	}
	page := req.Page
	if page < 1 {
		page = 1
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if page > totalPages {
		page = 1
	}

	info := PageInfo{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalCount:      total,
		Limit:           limit,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
	return info, (page - 1) * limit
}

// quiet returns a session that does not log, for high volume reads
func quiet(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})
}

// lookupError maps a missing row to NotFound and anything else to Infrastructure
func lookupError(err error, errorType, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NotFound(errorType, message)
	}
	return types.Infrastructure(errorType, err)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func loadCourse(tx *gorm.DB, courseID uuid.UUID) (*models.Course, error) {
	var course models.Course
	if err := tx.Where("id = ?", courseID).First(&course).Error; err != nil {
		return nil, lookupError(err, "course.not_found", "Course not found")
	}
	return &course, nil
}

func isEnrolled(tx *gorm.DB, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := tx.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}
