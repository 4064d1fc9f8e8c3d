package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/services"
	"github.com/localnerve/agrilearn/internal/testutil"
	"github.com/localnerve/agrilearn/internal/types"
)

func TestCreateCourse(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.SeedAdmin(t, db, "Admin Instructor")
	farmer := testutil.SeedUser(t, db, "Eric Farmer", models.UserTypeFarmer)

	in := services.CourseInput{
		Title:          "  Banana wilt control ",
		Description:    "Spotting and containing banana bacterial wilt",
		TimeToComplete: "3 weeks",
	}

	if _, err := services.CreateCourse(db, learnerActor(farmer), in); !types.IsKind(err, types.KindForbidden) {
		t.Errorf("non-admin: got %v", err)
	}

	course, err := services.CreateCourse(db, adminActor(admin), in)
	if err != nil {
		t.Fatal(err)
	}
	if course.Title != "Banana wilt control" || course.Level != "Beginner" || course.Language != "English" || course.CreatorID != admin.ID {
		t.Errorf("unexpected course %+v", course)
	}

	bad := in
	bad.TimeToComplete = "a while"
	bad.Level = "Expert"
	_, err = services.CreateCourse(db, adminActor(admin), bad)
	ce, ok := types.AsCustomError(err)
	if !ok || ce.Fields["timeToComplete"] == "" || ce.Fields["level"] == "" {
		t.Errorf("expected field errors, got %v", err)
	}
}

func TestListCoursesPagination(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.SeedAdmin(t, db, "Admin Instructor")
	other := testutil.SeedAdmin(t, db, "Second Instructor")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		c := testutil.SeedCourse(t, db, admin, fmt.Sprintf("Course %02d", i))
		if err := db.Model(&c).Update("created_at", base.Add(time.Duration(i)*time.Hour)).Error; err != nil {
			t.Fatal(err)
		}
		if i == 9 {
			testutil.SeedModules(t, db, c, 3)
		}
	}
	testutil.SeedCourse(t, db, other, "Someone else's")

	page, err := services.ListCourses(db, services.PageRequest{Page: 1, Limit: 4})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 11 || page.TotalPages != 3 || !page.HasNextPage || page.HasPreviousPage || len(page.Courses) != 4 {
		t.Errorf("first page info %+v", page.PageInfo)
	}

	page, err = services.ListCourses(db, services.PageRequest{Page: 3, Limit: 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Courses) != 3 || page.HasNextPage || !page.HasPreviousPage {
		t.Errorf("last page %+v", page.PageInfo)
	}

	page, err = services.ListCourses(db, services.PageRequest{Page: 9, Limit: 4})
	if err != nil {
		t.Fatal(err)
	}
	if page.CurrentPage != 1 {
		t.Errorf("a page past the end resets to the first page, got %d", page.CurrentPage)
	}

	mine, err := services.ListCreatorCourses(db, adminActor(admin), services.PageRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if mine.TotalCount != 10 || mine.Limit != services.DefaultPageLimit || len(mine.Courses) != services.DefaultPageLimit {
		t.Errorf("creator page %+v", mine.PageInfo)
	}
	if mine.Courses[0].Title != "Course 09" || mine.Courses[0].ModuleCount != 3 {
		t.Errorf("newest first with module counts, got %+v", mine.Courses[0])
	}
}

func TestGetCourseModulesInOrder(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.SeedAdmin(t, db, "Admin Instructor")
	course := testutil.SeedCourse(t, db, admin, "Soil basics")
	testutil.SeedModules(t, db, course, 3)

	detail, err := services.GetCourse(db, course.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(detail.Modules) != 3 || detail.Modules[0].Title != "Module 1" || detail.Modules[2].Title != "Module 3" {
		t.Errorf("modules %+v", detail.Modules)
	}

	if _, err := services.GetModule(db, uuid.New(), detail.Modules[0].ID); !types.IsKind(err, types.KindNotFound) {
		t.Errorf("module of another course: got %v", err)
	}
}

func TestEnrollment(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.SeedAdmin(t, db, "Admin Instructor")
	learner := testutil.SeedUser(t, db, "Eric Farmer", models.UserTypeFarmer)
	first := testutil.SeedCourse(t, db, admin, "Soil basics")
	second := testutil.SeedCourse(t, db, admin, "Irrigation")
	testutil.SeedModules(t, db, second, 2)
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	if _, err := services.Enroll(db, first.ID, learner.ID, now); err != nil {
		t.Fatal(err)
	}
	if _, err := services.Enroll(db, first.ID, learner.ID, now); !types.IsKind(err, types.KindConflict) {
		t.Errorf("second enrollment: got %v", err)
	}
	if _, err := services.Enroll(db, uuid.New(), learner.ID, now); !types.IsKind(err, types.KindNotFound) {
		t.Errorf("missing course: got %v", err)
	}
	if _, err := services.Enroll(db, second.ID, learner.ID, now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	views, err := services.ListEnrollments(db, learner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 2 || views[0].Course.ID != second.ID || views[0].ModuleCount != 2 {
		t.Errorf("enrollments %+v", views)
	}

	if err := services.Unenroll(db, first.ID, learner.ID); err != nil {
		t.Fatal(err)
	}
	if err := services.Unenroll(db, first.ID, learner.ID); !types.IsKind(err, types.KindNotFound) {
		t.Errorf("second unenroll: got %v", err)
	}
}
