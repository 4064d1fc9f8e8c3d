package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/types"
	"gorm.io/gorm"
)

// EnrollmentView is an enrollment with its course
type EnrollmentView struct {
	ID          uuid.UUID     `json:"id"`
	EnrolledAt  time.Time     `json:"enrolledAt"`
	Course      models.Course `json:"course"`
	ModuleCount int64         `json:"moduleCount"`
}

// Enroll adds the user to a course, at most once
func Enroll(db *gorm.DB, courseID, userID uuid.UUID, now time.Time) (*models.Enrollment, error) {
	if _, err := loadCourse(db, courseID); err != nil {
		return nil, err
	}

	enrolled, err := isEnrolled(db, userID, courseID)
	if err != nil {
		return nil, types.Infrastructure("enrollment.lookup", err)
	}
	if enrolled {
		return nil, alreadyEnrolled()
	}

	enrollment := models.Enrollment{UserID: userID, CourseID: courseID, EnrolledAt: now}
	if err := db.Create(&enrollment).Error; err != nil {
		if isDuplicate(err) {
			return nil, alreadyEnrolled()
		}
		return nil, types.Infrastructure("enrollment.create", err)
	}
	return &enrollment, nil
}

// Unenroll removes the user from a course
func Unenroll(db *gorm.DB, courseID, userID uuid.UUID) error {
	res := db.Where("user_id = ? AND course_id = ?", userID, courseID).Delete(&models.Enrollment{})
	if res.Error != nil {
		return types.Infrastructure("enrollment.delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.NotFound("enrollment.not_found", "Enrollment not found")
	}
	return nil
}

// ListEnrollments returns the user's enrollments, newest first
func ListEnrollments(db *gorm.DB, userID uuid.UUID) ([]EnrollmentView, error) {
	q := quiet(db)

	var enrollments []models.Enrollment
	if err := q.Where("user_id = ?", userID).Order("enrolled_at desc").Find(&enrollments).Error; err != nil {
		return nil, types.Infrastructure("enrollment.list", err)
	}
	if len(enrollments) == 0 {
		return []EnrollmentView{}, nil
	}

	ids := make([]uuid.UUID, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.CourseID)
	}
	var courses []models.Course
	if err := q.Where("id IN ?", ids).Find(&courses).Error; err != nil {
		return nil, types.Infrastructure("enrollment.courses", err)
	}
	counts, err := moduleCounts(q, courses)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	views := make([]EnrollmentView, 0, len(enrollments))
	for _, e := range enrollments {
		course, ok := byID[e.CourseID]
		if !ok {
			continue
		}
		views = append(views, EnrollmentView{
			ID:          e.ID,
			EnrolledAt:  e.EnrolledAt,
			Course:      course,
			ModuleCount: counts[course.ID],
		})
	}
	return views, nil
}

func alreadyEnrolled() error {
	return types.Conflict("enrollment.exists", "Already enrolled in this course")
}
