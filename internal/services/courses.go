package services

import (
	"strings"

	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/types"
	"github.com/localnerve/agrilearn/internal/validation"
	"gorm.io/gorm"
)

// CourseInput is the body of a new course
type CourseInput struct {
	Title          string `json:"title" validate:"required,min=3,max=100"`
	Description    string `json:"description" validate:"required,min=10,max=1000"`
	TimeToComplete string `json:"timeToComplete" validate:"required,studytime"`
	Level          string `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Category       string `json:"category" validate:"omitempty,oneof=Cropping Livestock Agroforestry Irrigation 'Soil Health' 'Pest Management'"`
	Language       string `json:"language" validate:"omitempty,oneof=English French Kinyarwanda"`
	IsDownloadable bool   `json:"isDownloadable"`
}

// ModuleInput is the body of a new module
type ModuleInput struct {
	Title        string `json:"title" validate:"required,min=3,max=100"`
	Content      string `json:"content" validate:"required,min=10,max=1000"`
	DurationTime string `json:"durationTime" validate:"required,moduletime"`
	IsCompleted  bool   `json:"isCompleted"`
}

// CourseSummary is a course listed with its module count
type CourseSummary struct {
	models.Course
	ModuleCount int64 `json:"moduleCount"`
}

// CourseDetail is a course with its modules, oldest first
type CourseDetail struct {
	models.Course
	Modules []models.Module `json:"modules"`
}

// CoursePage is one page of the course catalog
type CoursePage struct {
	Courses []CourseSummary `json:"courses"`
	PageInfo
}

// CreateCourse adds a course owned by the actor. Admins only.
func CreateCourse(db *gorm.DB, actor Actor, in CourseInput) (*models.Course, error) {
	if !actor.IsAdmin() {
		return nil, types.Forbidden("course.authorization", "Only admins can create courses")
	}
	in.Title = strings.TrimSpace(in.Title)
	in.TimeToComplete = strings.TrimSpace(in.TimeToComplete)
	if err := validation.Struct("course.validation", in); err != nil {
		return nil, err
	}

	course := models.Course{
		CreatorID:      actor.UserID,
		Title:          in.Title,
		Description:    in.Description,
		TimeToComplete: in.TimeToComplete,
		Level:          orDefault(in.Level, models.CourseLevels[0]),
		Category:       orDefault(in.Category, models.CourseCategories[0]),
		Language:       orDefault(in.Language, models.CourseLanguages[0]),
		IsDownloadable: in.IsDownloadable,
	}
	if err := db.Create(&course).Error; err != nil {
		return nil, types.Infrastructure("course.create", err)
	}
	return &course, nil
}

// ListCourses pages through the catalog, newest first
func ListCourses(db *gorm.DB, req PageRequest) (*CoursePage, error) {
	return listCourses(quiet(db), req)
}

// ListCreatorCourses pages through the courses created by the actor
func ListCreatorCourses(db *gorm.DB, actor Actor, req PageRequest) (*CoursePage, error) {
	if !actor.IsAdmin() {
		return nil, types.Forbidden("course.authorization", "Only admins have authored courses")
	}
	return listCourses(quiet(db).Where("creator_id = ?", actor.UserID).Session(&gorm.Session{}), req)
}

func listCourses(scoped *gorm.DB, req PageRequest) (*CoursePage, error) {
	var total int64
	if err := scoped.Model(&models.Course{}).Count(&total).Error; err != nil {
		return nil, types.Infrastructure("course.count", err)
	}
	info, offset := resolvePage(total, req)

	var courses []models.Course
	err := scoped.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(info.Limit).
		Find(&courses).Error
	if err != nil {
		return nil, types.Infrastructure("course.list", err)
	}

	counts, err := moduleCounts(scoped.Session(&gorm.Session{NewDB: true}), courses)
	if err != nil {
		return nil, err
	}

	summaries := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		summaries = append(summaries, CourseSummary{Course: c, ModuleCount: counts[c.ID]})
	}
	return &CoursePage{Courses: summaries, PageInfo: info}, nil
}

// GetCourse returns a course with its modules in creation order
func GetCourse(db *gorm.DB, courseID uuid.UUID) (*CourseDetail, error) {
	course, err := loadCourse(db, courseID)
	if err != nil {
		return nil, err
	}
	var modules []models.Module
	if err := quiet(db).Where("course_id = ?", courseID).Order("created_at asc").Order("id asc").Find(&modules).Error; err != nil {
		return nil, types.Infrastructure("module.list", err)
	}
	return &CourseDetail{Course: *course, Modules: modules}, nil
}

// ListModules returns a course's modules, newest first
func ListModules(db *gorm.DB, courseID uuid.UUID) ([]models.Module, error) {
	if _, err := loadCourse(db, courseID); err != nil {
		return nil, err
	}
	var modules []models.Module
	if err := quiet(db).Where("course_id = ?", courseID).Order("created_at desc").Order("id desc").Find(&modules).Error; err != nil {
		return nil, types.Infrastructure("module.list", err)
	}
	return modules, nil
}

// GetModule returns one module of a course
func GetModule(db *gorm.DB, courseID, moduleID uuid.UUID) (*models.Module, error) {
	var module models.Module
	if err := db.Where("id = ? AND course_id = ?", moduleID, courseID).First(&module).Error; err != nil {
		return nil, lookupError(err, "module.not_found", "Module not found")
	}
	return &module, nil
}

// CreateModule adds a module to a course. The course flag and the stored progress
// rows are re-derived in the same transaction, so a new incomplete module reopens
// the course for everyone who had finished it.
func CreateModule(db *gorm.DB, scope CompletionScope, actor Actor, courseID uuid.UUID, in ModuleInput) (*models.Module, error) {
	if !actor.IsAdmin() {
		return nil, types.Forbidden("module.authorization", "Only admins can create modules")
	}
	in.Title = strings.TrimSpace(in.Title)
	in.DurationTime = strings.TrimSpace(in.DurationTime)
	if err := validation.Struct("module.validation", in); err != nil {
		return nil, err
	}

	var module models.Module
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockCourse(tx, courseID); err != nil {
			return err
		}
		module = models.Module{
			CourseID:     courseID,
			Title:        in.Title,
			Content:      in.Content,
			DurationTime: in.DurationTime,
			IsCompleted:  in.IsCompleted && scope == ScopeCourse,
		}
		if err := tx.Create(&module).Error; err != nil {
			return types.Infrastructure("module.create", err)
		}
		if scope == ScopeCourse {
			if err := syncCourseFlag(tx, courseID); err != nil {
				return err
			}
		}
		return refreshCourseProgress(tx, scope, courseID, uuid.Nil)
	})
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func moduleCounts(db *gorm.DB, courses []models.Course) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(courses))
	if len(courses) == 0 {
		return counts, nil
	}
	ids := make([]uuid.UUID, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	var totals []idTotal
	err := db.Model(&models.Module{}).
		Select("course_id AS item_id, COUNT(*) AS total").
		Where("course_id IN ?", ids).
		Group("course_id").
		Scan(&totals).Error
	if err != nil {
		return nil, types.Infrastructure("module.count", err)
	}
	for _, t := range totals {
		counts[t.ItemID] = t.Total
	}
	return counts, nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
