// Package testutil holds the database and HTTP helpers shared by package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/database"
	"github.com/localnerve/agrilearn/internal/logger"
	"github.com/localnerve/agrilearn/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB creates a migrated, role-seeded in-memory SQLite database private to the test.
// The pool holds a single connection so the memory database lives as long as the test.
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn), logger.Nop(), gormlogger.Silent)
	if err != nil {
		tb.Fatalf("Failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("Failed to get underlying SQL DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		tb.Fatalf("Failed to migrate test database: %v", err)
	}
	if err := database.SeedRoles(db); err != nil {
		tb.Fatalf("Failed to seed roles: %v", err)
	}

	return db
}

// Role returns a seeded role by name
func Role(tb testing.TB, db *gorm.DB, name string) models.Role {
	tb.Helper()
	var role models.Role
	if err := db.Where("name = ?", name).First(&role).Error; err != nil {
		tb.Fatalf("Failed to load role %s: %v", name, err)
	}
	return role
}

// SeedUser inserts a user with the given full name and user type
func SeedUser(tb testing.TB, db *gorm.DB, fullName, userType string) models.User {
	tb.Helper()
	role := Role(tb, db, models.RoleUser)
	user := models.User{
		FullName:        fullName,
		PhoneNumber:     fmt.Sprintf("07%08d", time.Now().UnixNano()%100000000),
		Password:        "not-a-real-hash",
		RoleID:          role.ID,
		UserType:        userType,
		AnonymousName:   "Quiet" + fullName[:1] + "Owl",
		AnonymousAvatar: "minimal_gray_1",
		ProfilePicURL:   "https://media.example/" + fullName + ".png",
	}
	if err := db.Create(&user).Error; err != nil {
		tb.Fatalf("Failed to seed user %s: %v", fullName, err)
	}
	return user
}

// SeedCourse inserts a course owned by creator
func SeedCourse(tb testing.TB, db *gorm.DB, creator models.User, title string) models.Course {
	tb.Helper()
	course := models.Course{
		CreatorID:      creator.ID,
		Title:          title,
		Description:    "A practical course on " + title,
		TimeToComplete: "4 weeks",
		Level:          "Beginner",
		Category:       "Cropping",
		Language:       "English",
	}
	if err := db.Create(&course).Error; err != nil {
		tb.Fatalf("Failed to seed course %s: %v", title, err)
	}
	return course
}

// SeedModules inserts n incomplete modules with increasing creation times
func SeedModules(tb testing.TB, db *gorm.DB, course models.Course, n int) []models.Module {
	tb.Helper()
	base := time.Now().UTC().Add(-time.Hour)
	modules := make([]models.Module, 0, n)
	for i := 0; i < n; i++ {
		m := models.Module{
			CourseID:     course.ID,
			Title:        fmt.Sprintf("Module %d", i+1),
			Content:      "Hands-on field content for this module",
			DurationTime: "2 hours",
		}
		m.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := db.Create(&m).Error; err != nil {
			tb.Fatalf("Failed to seed module: %v", err)
		}
		modules = append(modules, m)
	}
	return modules
}

// Enroll inserts an enrollment row
func Enroll(tb testing.TB, db *gorm.DB, user models.User, course models.Course) {
	tb.Helper()
	e := models.Enrollment{UserID: user.ID, CourseID: course.ID, EnrolledAt: time.Now().UTC()}
	if err := db.Create(&e).Error; err != nil {
		tb.Fatalf("Failed to enroll user: %v", err)
	}
}

// SeedAdmin inserts a user holding the Admin role
func SeedAdmin(tb testing.TB, db *gorm.DB, fullName string) models.User {
	tb.Helper()
	user := SeedUser(tb, db, fullName, models.UserTypeBuyer)
	admin := Role(tb, db, models.RoleAdmin)
	if err := db.Model(&user).Update("role_id", admin.ID).Error; err != nil {
		tb.Fatalf("Failed to promote %s: %v", fullName, err)
	}
	user.RoleID = admin.ID
	return user
}
