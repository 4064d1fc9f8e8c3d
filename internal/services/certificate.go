package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/metrics"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/types"
	"gorm.io/gorm"
)

const certificateMessage = "Congratulations on successfully completing %s! Your dedication and hard work have paid off. " +
	"This certificate recognizes your achievement and the knowledge you've gained throughout this learning journey. " +
	"Keep up the excellent work!"

// UnknownInstructor names a course creator that no longer exists
const UnknownInstructor = "Unknown Instructor"

// CertificateView is a certificate joined with its course and instructor
type CertificateView struct {
	models.Certificate
	CourseTitle       string `json:"courseTitle"`
	CourseDescription string `json:"courseDescription"`
	CourseCategory    string `json:"courseCategory"`
	CourseLevel       string `json:"courseLevel"`
	InstructorName    string `json:"instructorName"`
}

// IssueCertificate writes the certificate for a completed course. It is issued
// at most once per (user, course); a repeat request is a Conflict.
func IssueCertificate(db *gorm.DB, scope CompletionScope, courseID, userID uuid.UUID, now time.Time) (*models.Certificate, error) {
	var cert models.Certificate
	err := db.Transaction(func(tx *gorm.DB) error {
		course, err := lockCourse(tx, courseID)
		if err != nil {
			return err
		}

		completed, err := courseCompleted(tx, scope, course, userID)
		if err != nil {
			return err
		}
		if !completed {
			return types.ValidationFailed("certificate.not_completed", "Course not yet completed", nil)
		}

		var existing int64
		if err := tx.Model(&models.Certificate{}).
			Where("user_id = ? AND course_id = ?", userID, courseID).
			Count(&existing).Error; err != nil {
			return types.Infrastructure("certificate.lookup", err)
		}
		if existing > 0 {
			return alreadyIssued()
		}

		cert = models.Certificate{
			UserID:            userID,
			CourseID:          courseID,
			CompletionMessage: fmt.Sprintf(certificateMessage, course.Title),
			CompletedAt:       now,
			IssuedAt:          now,
		}
		if err := tx.Create(&cert).Error; err != nil {
			if isDuplicate(err) {
				return alreadyIssued()
			}
			return types.Infrastructure("certificate.create", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.CertificatesIssued.Inc()
	return &cert, nil
}

// GetCertificate returns the caller's certificate for a course
func GetCertificate(db *gorm.DB, courseID, userID uuid.UUID) (*CertificateView, error) {
	views, err := certificateViews(db.Where("certificates.course_id = ? AND certificates.user_id = ?", courseID, userID))
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, types.NotFound("certificate.not_found", "Certificate not found")
	}
	return &views[0], nil
}

// ListCertificates returns every certificate of a user, newest first
func ListCertificates(db *gorm.DB, userID uuid.UUID) ([]CertificateView, error) {
	return certificateViews(db.Where("certificates.user_id = ?", userID).Order("certificates.issued_at desc"))
}

func certificateViews(query *gorm.DB) ([]CertificateView, error) {
	var certs []models.Certificate
	if err := quiet(query).Find(&certs).Error; err != nil {
		return nil, types.Infrastructure("certificate.list", err)
	}
	if len(certs) == 0 {
		return []CertificateView{}, nil
	}

	db := query.Session(&gorm.Session{NewDB: true})

	courseIDs := make([]uuid.UUID, 0, len(certs))
	for _, c := range certs {
		courseIDs = append(courseIDs, c.CourseID)
	}
	var courses []models.Course
	if err := db.Where("id IN ?", courseIDs).Find(&courses).Error; err != nil {
		return nil, types.Infrastructure("certificate.courses", err)
	}
	byCourse := make(map[uuid.UUID]models.Course, len(courses))
	creatorIDs := make([]uuid.UUID, 0, len(courses))
	for _, c := range courses {
		byCourse[c.ID] = c
		creatorIDs = append(creatorIDs, c.CreatorID)
	}

	names, err := userNames(db, creatorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]CertificateView, 0, len(certs))
	for _, cert := range certs {
		course := byCourse[cert.CourseID]
		instructor, ok := names[course.CreatorID]
		if !ok || instructor == "" {
			instructor = UnknownInstructor
		}
		views = append(views, CertificateView{
			Certificate:       cert,
			CourseTitle:       course.Title,
			CourseDescription: course.Description,
			CourseCategory:    course.Category,
			CourseLevel:       course.Level,
			InstructorName:    instructor,
		})
	}
	return views, nil
}

// courseCompleted counts live under the course lock; stored progress rows are
// not trusted here.
func courseCompleted(tx *gorm.DB, scope CompletionScope, course *models.Course, userID uuid.UUID) (bool, error) {
	if scope != ScopeLearner {
		return course.IsCourseCompleted, nil
	}
	progress, err := countProgress(tx, scope, course.ID, userID)
	if err != nil {
		return false, err
	}
	return progress.IsCourseCompleted, nil
}

func userNames(db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var users []models.User
	if err := db.Select("id", "full_name").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, types.Infrastructure("user.names", err)
	}
	for _, u := range users {
		names[u.ID] = u.FullName
	}
	return names, nil
}

func alreadyIssued() error {
	return types.Conflict("certificate.already_issued", "Certificate already issued for this course")
}
