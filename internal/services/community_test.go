package services_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/services"
	"github.com/localnerve/agrilearn/internal/testutil"
	"github.com/localnerve/agrilearn/internal/types"
	"github.com/shopspring/decimal"
)

func donationInput() services.DonationInput {
	return services.DonationInput{
		Email:              "aline@example.com",
		ProjectTitle:       "Drip irrigation",
		ProjectDescription: "Drip lines for two hectares of beans",
		BudgetAmount:       decimal.RequireFromString("2500000.456"),
		Certificates:       []string{"cert-a.pdf"},
	}
}

func TestDonationLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	applicant := testutil.SeedUser(t, db, "Aline Uwase", models.UserTypeFarmer)
	investor := testutil.SeedUser(t, db, "Grace Investor", models.UserTypeInvestor)

	zero := donationInput()
	zero.BudgetAmount = decimal.Zero
	_, err := services.ApplyForDonation(db, learnerActor(applicant), zero)
	if ce, ok := types.AsCustomError(err); !ok || ce.Fields["budgetAmount"] == "" {
		t.Errorf("zero budget: got %v", err)
	}

	app, err := services.ApplyForDonation(db, learnerActor(applicant), donationInput())
	if err != nil {
		t.Fatal(err)
	}
	if app.Status != models.DonationPending || app.BudgetAmount.String() != "2500000.46" {
		t.Errorf("unexpected application %+v", app)
	}

	if _, err := services.ListDonations(db, learnerActor(applicant)); !types.IsKind(err, types.KindForbidden) {
		t.Errorf("non-investor listing: got %v", err)
	}
	views, err := services.ListDonations(db, learnerActor(investor))
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 || views[0].ApplicantName != "Aline Uwase" {
		t.Errorf("views %+v", views)
	}

	review := services.DonationReview{Status: "Approved", ReviewNotes: "Strong plan"}
	if _, err := services.ReviewDonation(db, learnerActor(applicant), app.ID, review, time.Now()); !types.IsKind(err, types.KindForbidden) {
		t.Errorf("applicant reviewing: got %v", err)
	}
	if _, err := services.ReviewDonation(db, learnerActor(investor), uuid.New(), review, time.Now()); !types.IsKind(err, types.KindNotFound) {
		t.Errorf("missing application: got %v", err)
	}

	now := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	reviewed, err := services.ReviewDonation(db, learnerActor(investor), app.ID, review, now)
	if err != nil {
		t.Fatal(err)
	}
	if reviewed.Status != models.DonationApproved || reviewed.ReviewedBy == nil || *reviewed.ReviewedBy != investor.ID {
		t.Errorf("review not recorded %+v", reviewed)
	}
	if reviewed.ReviewedAt == nil || !reviewed.ReviewedAt.Equal(now) || reviewed.ApplicantName != "Aline Uwase" {
		t.Errorf("review metadata %+v", reviewed)
	}
}

func TestCreateLiveSession(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.SeedAdmin(t, db, "Admin Instructor")
	farmer := testutil.SeedUser(t, db, "Eric Farmer", models.UserTypeFarmer)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	in := services.LiveSessionInput{
		Title:           "Pest scouting Q&A",
		MeetingURL:      "https://meet.example/pests",
		ScheduledAt:     now.Add(24 * time.Hour),
		DurationMinutes: 60,
	}
	if _, err := services.CreateLiveSession(db, learnerActor(farmer), in, now); !types.IsKind(err, types.KindForbidden) {
		t.Errorf("farmer hosting: got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*services.LiveSessionInput)
		field  string
	}{
		{"too short", func(in *services.LiveSessionInput) { in.DurationMinutes = services.MinSessionMinutes - 1 }, "duration"},
		{"too long", func(in *services.LiveSessionInput) { in.DurationMinutes = services.MaxSessionMinutes + 1 }, "duration"},
		{"in the past", func(in *services.LiveSessionInput) { in.ScheduledAt = now.Add(-time.Minute) }, "scheduledAt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := in
			tt.mutate(&bad)
			_, err := services.CreateLiveSession(db, adminActor(admin), bad, now)
			if ce, ok := types.AsCustomError(err); !ok || ce.Fields[tt.field] == "" {
				t.Errorf("got %v, want a %s field error", err, tt.field)
			}
		})
	}

	session, err := services.CreateLiveSession(db, adminActor(admin), in, now)
	if err != nil {
		t.Fatal(err)
	}
	if !session.IsActive || session.HostID != admin.ID {
		t.Errorf("unexpected session %+v", session)
	}
}

func TestListLiveSessionsExpiresAndHidesOwn(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.SeedAdmin(t, db, "Admin Instructor")
	investor := testutil.SeedUser(t, db, "Grace Investor", models.UserTypeInvestor)
	farmer := testutil.SeedUser(t, db, "Eric Farmer", models.UserTypeFarmer)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	seed := func(host models.User, title string, start time.Time, minutes int) models.LiveSession {
		s := models.LiveSession{HostID: host.ID, Title: title, ScheduledAt: start, DurationMinutes: minutes, IsActive: true}
		if err := db.Create(&s).Error; err != nil {
			t.Fatal(err)
		}
		return s
	}
	ended := seed(admin, "Ended", now.Add(-2*time.Hour), 60)
	running := seed(investor, "Running", now.Add(-30*time.Minute), 60)
	later := seed(admin, "Later", now.Add(time.Hour), 30)

	sessions, err := services.ListLiveSessions(db, learnerActor(farmer), now)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 3 || sessions[0].ID != ended.ID || sessions[2].ID != later.ID {
		t.Fatalf("sessions must be soonest first: %+v", sessions)
	}
	if sessions[0].IsActive || !sessions[1].IsActive || !sessions[2].IsActive {
		t.Errorf("only the ended session is deactivated: %+v", sessions)
	}

	sessions, err = services.ListLiveSessions(db, learnerActor(investor), now)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range sessions {
		if s.ID == running.ID {
			t.Error("investors do not see the sessions they host")
		}
	}

	sessions, err = services.ListLiveSessions(db, adminActor(admin), now)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].ID != running.ID {
		t.Errorf("admin sees %+v", sessions)
	}

	changed, err := services.DeactivateExpiredSessions(db, now)
	if err != nil || changed != 0 {
		t.Errorf("second sweep changed %d, err %v", changed, err)
	}
}
