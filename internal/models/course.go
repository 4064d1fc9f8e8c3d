package models

import (
	"time"

	"github.com/google/uuid"
)

// Course levels, categories and languages accepted on creation
var (
	CourseLevels     = []string{"Beginner", "Intermediate", "Advanced"}
	CourseCategories = []string{"Cropping", "Livestock", "Agroforestry", "Irrigation", "Soil Health", "Pest Management"}
	CourseLanguages  = []string{"English", "French", "Kinyarwanda"}
)

// Course is a unit of instruction. IsCourseCompleted is the course-global completion
// flag, maintained by the progress recompute.
type Course struct {
	Base
	CreatorID         uuid.UUID `gorm:"type:char(36);index" json:"creatorId"`
	Title             string    `gorm:"size:100;not null" json:"title"`
	Description       string    `gorm:"size:1000;not null" json:"description"`
	TimeToComplete    string    `gorm:"size:50;not null" json:"timeToComplete"`
	Level             string    `gorm:"size:20;not null" json:"level"`
	Category          string    `gorm:"size:50;not null" json:"category"`
	Language          string    `gorm:"size:20;not null" json:"language"`
	IsDownloadable    bool      `json:"isDownloadable"`
	IsCourseCompleted bool      `gorm:"not null" json:"isCourseCompleted"`
}

// Module is an ordered content unit of a course
type Module struct {
	Base
	CourseID     uuid.UUID `gorm:"type:char(36);index;not null" json:"courseId"`
	Title        string    `gorm:"size:100;not null" json:"title"`
	Content      string    `gorm:"size:1000;not null" json:"content"`
	DurationTime string    `gorm:"size:50;not null" json:"durationTime"`
	IsCompleted  bool      `gorm:"not null" json:"isCompleted"`
}

// TableName overrides the table name for Module
func (Module) TableName() string {
	return "course_modules"
}

// ModuleCompletion records that a learner finished a module
type ModuleCompletion struct {
	Base
	UserID      uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_module_completion_user_module;not null" json:"userId"`
	ModuleID    uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_module_completion_user_module;not null" json:"moduleId"`
	CompletedAt time.Time `json:"completedAt"`
}

// Enrollment links a user to a course, at most once
type Enrollment struct {
	Base
	UserID     uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_enrollment_user_course;not null" json:"userId"`
	CourseID   uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_enrollment_user_course;not null" json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

// CourseProgress is the derived progress of one user in one course
type CourseProgress struct {
	Base
	UserID             uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_progress_user_course;not null" json:"userId"`
	CourseID           uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_progress_user_course;not null" json:"courseId"`
	CompletedModules   int       `gorm:"not null" json:"completedModules"`
	TotalModules       int       `gorm:"not null" json:"totalModules"`
	ProgressPercentage int       `gorm:"not null" json:"progressPercentage"`
	IsCompleted        bool      `gorm:"not null" json:"isCompleted"`
}

// TableName overrides the table name for CourseProgress
func (CourseProgress) TableName() string {
	return "course_progress"
}

// Certificate is issued at most once per (user, course)
type Certificate struct {
	Base
	UserID            uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_certificate_user_course;not null" json:"userId"`
	CourseID          uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_certificate_user_course;not null" json:"courseId"`
	CompletionMessage string    `gorm:"size:1000;not null" json:"completionMessage"`
	CompletedAt       time.Time `json:"completedAt"`
	IssuedAt          time.Time `json:"issuedAt"`
}
