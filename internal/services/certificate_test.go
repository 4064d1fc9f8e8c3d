package services_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/services"
	"github.com/localnerve/agrilearn/internal/testutil"
	"github.com/localnerve/agrilearn/internal/types"
	"gorm.io/gorm"
)

func completeAll(t *testing.T, db *gorm.DB, scope services.CompletionScope, actor services.Actor, course models.Course, modules []models.Module) {
	t.Helper()
	for _, m := range modules {
		if _, err := services.UpdateModule(db, scope, actor, course.ID, m.ID, services.ModuleUpdate{IsCompleted: boolPtr(true)}); err != nil {
			t.Fatalf("complete %s: %v", m.Title, err)
		}
	}
}

func TestIssueCertificateOnce(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.SeedAdmin(t, db, "Admin Instructor")
	learner := testutil.SeedUser(t, db, "Eric Farmer", models.UserTypeFarmer)
	course := testutil.SeedCourse(t, db, admin, "Soil basics")
	modules := testutil.SeedModules(t, db, course, 3)
	testutil.Enroll(t, db, learner, course)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err := services.IssueCertificate(db, services.ScopeCourse, course.ID, learner.ID, now)
	if ce, ok := types.AsCustomError(err); !ok || ce.Type != "certificate.not_completed" || ce.Code != 400 {
		t.Fatalf("incomplete course: got %v", err)
	}

	completeAll(t, db, services.ScopeCourse, learnerActor(learner), course, modules)

	cert, err := services.IssueCertificate(db, services.ScopeCourse, course.ID, learner.ID, now)
	if err != nil {
		t.Fatal(err)
	}
	if !cert.IssuedAt.Equal(now) || !strings.Contains(cert.CompletionMessage, "Soil basics") {
		t.Errorf("unexpected certificate %+v", cert)
	}

	_, err = services.IssueCertificate(db, services.ScopeCourse, course.ID, learner.ID, now.Add(time.Hour))
	if !types.IsKind(err, types.KindConflict) {
		t.Errorf("second issue: got %v, want conflict", err)
	}

	view, err := services.GetCertificate(db, course.ID, learner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if view.InstructorName != "Admin Instructor" || view.CourseTitle != "Soil basics" || view.ID != cert.ID {
		t.Errorf("unexpected view %+v", view)
	}
}

func TestIssueCertificateConcurrently(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.SeedAdmin(t, db, "Admin Instructor")
	learner := testutil.SeedUser(t, db, "Eric Farmer", models.UserTypeFarmer)
	course := testutil.SeedCourse(t, db, admin, "Soil basics")
	modules := testutil.SeedModules(t, db, course, 2)
	testutil.Enroll(t, db, learner, course)
	completeAll(t, db, services.ScopeCourse, learnerActor(learner), course, modules)

	const workers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		issued    int
		conflicts int
	)
	for i := 0; i < workers; i++ {
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
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()

	if issued != 1 || conflicts != workers-1 {
		t.Errorf("issued %d, conflicts %d", issued, conflicts)
	}
}

func TestIssueCertificateLearnerScope(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.SeedAdmin(t, db, "Admin Instructor")
	done := testutil.SeedUser(t, db, "Eric Farmer", models.UserTypeFarmer)
	behind := testutil.SeedUser(t, db, "Olive Buyer", models.UserTypeBuyer)
	course := testutil.SeedCourse(t, db, admin, "Soil basics")
	modules := testutil.SeedModules(t, db, course, 2)
	testutil.Enroll(t, db, done, course)
	testutil.Enroll(t, db, behind, course)
	completeAll(t, db, services.ScopeLearner, learnerActor(done), course, modules)

	if _, err := services.IssueCertificate(db, services.ScopeLearner, course.ID, done.ID, time.Now().UTC()); err != nil {
		t.Fatalf("finished learner: %v", err)
	}
	_, err := services.IssueCertificate(db, services.ScopeLearner, course.ID, behind.ID, time.Now().UTC())
	if !types.IsKind(err, types.KindValidationFailed) {
		t.Errorf("unfinished learner: got %v", err)
	}
}

func TestIssueCertificateLearnerScopeAfterNewModule(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.SeedAdmin(t, db, "Admin Instructor")
	learner := testutil.SeedUser(t, db, "Eric Farmer", models.UserTypeFarmer)
	course := testutil.SeedCourse(t, db, admin, "Soil basics")
	modules := testutil.SeedModules(t, db, course, 2)
	testutil.Enroll(t, db, learner, course)
	completeAll(t, db, services.ScopeLearner, learnerActor(learner), course, modules)

	_, err := services.CreateModule(db, services.ScopeLearner, adminActor(admin), course.ID, services.ModuleInput{
		Title:        "Composting",
		Content:      "Turning farm waste into soil food",
		DurationTime: "3 hours",
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = services.IssueCertificate(db, services.ScopeLearner, course.ID, learner.ID, time.Now().UTC())
	if ce, ok := types.AsCustomError(err); !ok || ce.Type != "certificate.not_completed" {
		t.Errorf("2 of 3 modules done: got %v, want not completed", err)
	}
}

func TestListCertificatesUnknownInstructor(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.SeedAdmin(t, db, "Admin Instructor")
	learner := testutil.SeedUser(t, db, "Eric Farmer", models.UserTypeFarmer)
	course := testutil.SeedCourse(t, db, admin, "Soil basics")
	modules := testutil.SeedModules(t, db, course, 1)
	testutil.Enroll(t, db, learner, course)
	completeAll(t, db, services.ScopeCourse, learnerActor(learner), course, modules)
	if _, err := services.IssueCertificate(db, services.ScopeCourse, course.ID, learner.ID, time.Now().UTC()); err != nil {
		t.Fatal(err)
	}

	if err := db.Delete(&models.User{}, "id = ?", admin.ID).Error; err != nil {
		t.Fatal(err)
	}

	certs, err := services.ListCertificates(db, learner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(certs) != 1 || certs[0].InstructorName != services.UnknownInstructor {
		t.Errorf("unexpected certificates %+v", certs)
	}

	if _, err := services.GetCertificate(db, course.ID, admin.ID); !types.IsKind(err, types.KindNotFound) {
		t.Errorf("missing certificate: got %v", err)
	}
}
