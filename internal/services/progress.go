package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/config"
	"github.com/localnerve/agrilearn/internal/metrics"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/types"
	"github.com/localnerve/agrilearn/internal/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompletionScope selects where module completion is recorded
type CompletionScope string

const (
	// ScopeCourse records completion on the module row; the course flag is global
	ScopeCourse CompletionScope = config.CompletionScopeCourse
	// ScopeLearner records completion per (user, module)
	ScopeLearner CompletionScope = config.CompletionScopeLearner
)

// ProgressResult is the outcome of a recompute
type ProgressResult struct {
	CompletedCount     int  `json:"completedModules"`
	TotalModules       int  `json:"totalModules"`
	ProgressPercentage int  `json:"progressPercentage"`
	IsCourseCompleted  bool `json:"isCourseCompleted"`
}

// ModuleUpdate is the allowlist of module fields a caller may change
type ModuleUpdate struct {
	Title        *string `json:"title" validate:"omitempty,min=3,max=100"`
	Content      *string `json:"content" validate:"omitempty,min=10,max=1000"`
	DurationTime *string `json:"durationTime" validate:"omitempty,moduletime"`
	IsCompleted  *bool   `json:"isCompleted"`
}

func (u ModuleUpdate) contentChanges() map[string]interface{} {
	changes := map[string]interface{}{}
	if u.Title != nil {
		changes["title"] = *u.Title
	}
	if u.Content != nil {
		changes["content"] = *u.Content
	}
	if u.DurationTime != nil {
		changes["duration_time"] = *u.DurationTime
	}
	return changes
}

// ModuleUpdateResult carries the updated module and the caller's progress
type ModuleUpdateResult struct {
	Module   models.Module  `json:"module"`
	Progress ProgressResult `json:"progress"`
}

// UpdateModule applies an allowlisted update and recomputes the actor's progress,
// all inside one transaction holding the course row lock.
func UpdateModule(db *gorm.DB, scope CompletionScope, actor Actor, courseID, moduleID uuid.UUID, update ModuleUpdate) (*ModuleUpdateResult, error) {
	if err := validation.Struct("module.validation", update); err != nil {
		return nil, err
	}
	changes := update.contentChanges()
	if len(changes) == 0 && update.IsCompleted == nil {
		return nil, types.ValidationFailed("module.validation", "No updatable fields provided", nil)
	}

	var result ModuleUpdateResult
	err := db.Transaction(func(tx *gorm.DB) error {
		course, err := lockCourse(tx, courseID)
		if err != nil {
			return err
		}

		var module models.Module
		if err := tx.Where("id = ? AND course_id = ?", moduleID, courseID).First(&module).Error; err != nil {
			return lookupError(err, "module.not_found", "Module not found")
		}

		owner := actor.IsAdmin() || course.CreatorID == actor.UserID
		if len(changes) > 0 && !owner {
			return types.Forbidden("module.authorization", "Only the course creator can edit module content")
		}

		if update.IsCompleted != nil {
			if !owner {
				enrolled, err := isEnrolled(tx, actor.UserID, courseID)
				if err != nil {
					return types.Infrastructure("module.enrollment", err)
				}
				if !enrolled {
					return types.Forbidden("module.authorization", "Enroll in the course to track module completion")
				}
			}

			if scope == ScopeLearner {
				if err := setLearnerCompletion(tx, actor.UserID, module.ID, *update.IsCompleted); err != nil {
					return err
				}
			} else {
				changes["is_completed"] = *update.IsCompleted
			}
		}

		if len(changes) > 0 {
			if err := tx.Model(&module).Updates(changes).Error; err != nil {
				return types.Infrastructure("module.update", err)
			}
		}

		progress, err := recomputeProgress(tx, scope, course.ID, actor.UserID)
		if err != nil {
			return err
		}
		// module rows are shared in course scope, so every learner's count moved
		if scope == ScopeCourse && update.IsCompleted != nil {
			if err := refreshCourseProgress(tx, scope, course.ID, actor.UserID); err != nil {
				return err
			}
		}

		if err := tx.Where("id = ?", module.ID).First(&module).Error; err != nil {
			return types.Infrastructure("module.reload", err)
		}
		if scope == ScopeLearner {
			done, err := learnerCompleted(tx, actor.UserID, module.ID)
			if err != nil {
				return err
			}
			module.IsCompleted = done
		}

		result = ModuleUpdateResult{Module: module, Progress: progress}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// RecomputeProgress derives the user's progress for a course from the module
// completion state, upserts it, and maintains the course completion flag.
func RecomputeProgress(db *gorm.DB, scope CompletionScope, courseID, userID uuid.UUID) (ProgressResult, error) {
	var result ProgressResult
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockCourse(tx, courseID); err != nil {
			return err
		}
		var err error
		result, err = recomputeProgress(tx, scope, courseID, userID)
		return err
	})
	return result, err
}

// GetProgress derives the user's progress from the current modules without writing
func GetProgress(db *gorm.DB, scope CompletionScope, courseID, userID uuid.UUID) (ProgressResult, error) {
	if _, err := loadCourse(db, courseID); err != nil {
		return ProgressResult{}, err
	}
	return countProgress(db, scope, courseID, userID)
}

// progressPercentage rounds half up; no modules means no progress
func progressPercentage(completed, total int64) int {
	if total <= 0 {
		return 0
	}
	return int((200*completed + total) / (2 * total))
}

func lockCourse(tx *gorm.DB, courseID uuid.UUID) (*models.Course, error) {
	var course models.Course
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", courseID).
		First(&course).Error
	if err != nil {
		return nil, lookupError(err, "course.not_found", "Course not found")
	}
	return &course, nil
}

// countProgress counts the modules of a course and the ones completed in scope
func countProgress(tx *gorm.DB, scope CompletionScope, courseID, userID uuid.UUID) (ProgressResult, error) {
	var total, completed int64
	if err := tx.Model(&models.Module{}).Where("course_id = ?", courseID).Count(&total).Error; err != nil {
		return ProgressResult{}, types.Infrastructure("progress.count", err)
	}

	var err error
	if scope == ScopeLearner {
		err = tx.Model(&models.ModuleCompletion{}).
			Joins("JOIN course_modules ON course_modules.id = module_completions.module_id").
			Where("course_modules.course_id = ? AND module_completions.user_id = ?", courseID, userID).
			Count(&completed).Error
	} else {
		err = tx.Model(&models.Module{}).
			Where("course_id = ? AND is_completed = ?", courseID, true).
			Count(&completed).Error
	}
	if err != nil {
		return ProgressResult{}, types.Infrastructure("progress.count", err)
	}

	return ProgressResult{
		CompletedCount:     int(completed),
		TotalModules:       int(total),
		ProgressPercentage: progressPercentage(completed, total),
		IsCourseCompleted:  total > 0 && completed == total,
	}, nil
}

func recomputeProgress(tx *gorm.DB, scope CompletionScope, courseID, userID uuid.UUID) (ProgressResult, error) {
	metrics.ProgressRecomputes.WithLabelValues(string(scope)).Inc()

	result, err := countProgress(tx, scope, courseID, userID)
	if err != nil {
		return ProgressResult{}, err
	}

	done := result.IsCourseCompleted
	row := models.CourseProgress{
		UserID:             userID,
		CourseID:           courseID,
		CompletedModules:   result.CompletedCount,
		TotalModules:       result.TotalModules,
		ProgressPercentage: result.ProgressPercentage,
		IsCompleted:        done,
	}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed_modules", "total_modules", "progress_percentage", "is_completed", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return ProgressResult{}, types.Infrastructure("progress.upsert", err)
	}

	if scope == ScopeCourse {
		if err := tx.Model(&models.Course{}).Where("id = ?", courseID).Update("is_course_completed", done).Error; err != nil {
			return ProgressResult{}, types.Infrastructure("progress.course_flag", err)
		}
	}
	if done {
		metrics.CoursesCompleted.Inc()
	}

	return result, nil
}

// refreshCourseProgress recomputes every stored progress row of a course except
// skip's. Callers hold the course lock.
func refreshCourseProgress(tx *gorm.DB, scope CompletionScope, courseID, skip uuid.UUID) error {
	var userIDs []uuid.UUID
	err := tx.Model(&models.CourseProgress{}).
		Where("course_id = ? AND user_id <> ?", courseID, skip).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return types.Infrastructure("progress.refresh", err)
	}
	for _, id := range userIDs {
		if _, err := recomputeProgress(tx, scope, courseID, id); err != nil {
			return err
		}
	}
	return nil
}

// syncCourseFlag re-derives the course-global flag from the module rows
func syncCourseFlag(tx *gorm.DB, courseID uuid.UUID) error {
	var total, completed int64
	if err := tx.Model(&models.Module{}).Where("course_id = ?", courseID).Count(&total).Error; err != nil {
		return types.Infrastructure("course.flag", err)
	}
	if err := tx.Model(&models.Module{}).Where("course_id = ? AND is_completed = ?", courseID, true).Count(&completed).Error; err != nil {
		return types.Infrastructure("course.flag", err)
	}
	done := total > 0 && completed == total
	if err := tx.Model(&models.Course{}).Where("id = ?", courseID).Update("is_course_completed", done).Error; err != nil {
		return types.Infrastructure("course.flag", err)
	}
	return nil
}

func setLearnerCompletion(tx *gorm.DB, userID, moduleID uuid.UUID, completed bool) error {
	if !completed {
		err := tx.Where("user_id = ? AND module_id = ?", userID, moduleID).Delete(&models.ModuleCompletion{}).Error
		if err != nil {
			return types.Infrastructure("module.completion", err)
		}
		return nil
	}

	row := models.ModuleCompletion{UserID: userID, ModuleID: moduleID, CompletedAt: time.Now().UTC()}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return types.Infrastructure("module.completion", err)
	}
	return nil
}

func learnerCompleted(tx *gorm.DB, userID, moduleID uuid.UUID) (bool, error) {
	var count int64
	err := tx.Model(&models.ModuleCompletion{}).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		Count(&count).Error
	if err != nil {
		return false, types.Infrastructure("module.completion", err)
	}
	return count > 0, nil
}
