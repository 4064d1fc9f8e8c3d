package database_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/localnerve/agrilearn/internal/config"
	"github.com/localnerve/agrilearn/internal/database"
	"github.com/localnerve/agrilearn/internal/devstack"
	"github.com/localnerve/agrilearn/internal/logger"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/services"
	"github.com/localnerve/agrilearn/internal/testutil"
	"github.com/localnerve/agrilearn/internal/types"
)

// TestWithMariaDB runs migrations and the completion flow against a real server
func TestWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	stack, err := devstack.Start(ctx, devstack.Options{
		DBType:     "mariadb",
		DBImage:    os.Getenv("DB_IMAGE"),
		DBDatabase: "testdb",
		DBUser:     "testuser",
		DBPassword: "testpass",
	}, logger.Nop())
	if err != nil {
		t.Fatalf("Failed to start MariaDB container: %v", err)
	}
	defer stack.Terminate(context.Background())

	cfg := &config.Config{
		DBType:            "mysql",
		DBHost:            stack.DBHost,
		DBPort:            stack.DBPort,
		DBDatabase:        "testdb",
		DBUser:            "testuser",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
		LogMode:           "test",
	}

	db, err := database.Connect(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := database.SeedRoles(db); err != nil {
			t.Fatalf("Failed to seed roles (pass %d): %v", i+1, err)
		}
	}

	var roles int64
	db.Model(&models.Role{}).Count(&roles)
	if roles != 2 {
		t.Errorf("expected 2 seeded roles, got %d", roles)
	}

	admin := testutil.SeedAdmin(t, db, "Admin Instructor")
	learner := testutil.SeedUser(t, db, "Eric Farmer", models.UserTypeFarmer)
	course := testutil.SeedCourse(t, db, admin, "Soil basics")
	modules := testutil.SeedModules(t, db, course, 2)
	testutil.Enroll(t, db, learner, course)

	actor := services.Actor{UserID: learner.ID, Role: models.RoleUser, UserType: learner.UserType}
	done := true
	for _, m := range modules {
		if _, err := services.UpdateModule(db, services.ScopeCourse, actor, course.ID, m.ID, services.ModuleUpdate{IsCompleted: &done}); err != nil {
			t.Fatalf("complete %s: %v", m.Title, err)
		}
	}

	progress, err := services.GetProgress(db, services.ScopeCourse, course.ID, learner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if progress.ProgressPercentage != 100 || !progress.IsCourseCompleted {
		t.Fatalf("progress %+v", progress)
	}

	// Row locks serialize the issuers on a real server.
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		issued    int
		conflicts int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := services.IssueCertificate(db, services.ScopeCourse, course.ID, learner.ID, time.Now().UTC())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				issued++
			case types.IsKind(err, types.KindConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if issued != 1 || conflicts != 3 {
		t.Errorf("issued %d, conflicts %d", issued, conflicts)
	}
}
