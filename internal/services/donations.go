package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/types"
	"github.com/localnerve/agrilearn/internal/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DonationInput is the body of a funding application
type DonationInput struct {
	Email              string           `json:"email" validate:"required,email"`
	ProjectTitle       string           `json:"projectTitle" validate:"required,min=3,max=255"`
	Organization       string           `json:"organization" validate:"max=255"`
	ProjectDescription string           `json:"projectDescription" validate:"required,min=10,max=4000"`
	ProjectGoals       string           `json:"projectGoals" validate:"max=4000"`
	BudgetAmount       decimal.Decimal  `json:"budgetAmount"`
	Duration           string           `json:"duration" validate:"max=100"`
	ExpectedImpact     string           `json:"expectedImpact" validate:"max=4000"`
	Certificates       types.StringList `json:"certificates"`
}

// DonationReview is an investor's decision
type DonationReview struct {
	Status      string `json:"status" validate:"required,oneof=approved rejected"`
	ReviewNotes string `json:"reviewNotes" validate:"required,max=2000"`
}

// DonationView is an application with the applicant's name
type DonationView struct {
	models.DonationApplication
	ApplicantName string `json:"applicantName"`
}

// ApplyForDonation files a pending application for the actor
func ApplyForDonation(db *gorm.DB, actor Actor, in DonationInput) (*models.DonationApplication, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.ProjectTitle = strings.TrimSpace(in.ProjectTitle)
	if err := validation.Struct("donation.validation", in); err != nil {
		return nil, err
	}
	if !in.BudgetAmount.IsPositive() {
		return nil, types.ValidationFailed("donation.validation", "Invalid input", map[string]string{
			"budgetAmount": "must be greater than 0",
		})
	}

	app := models.DonationApplication{
		UserID:             actor.UserID,
		Email:              in.Email,
		ProjectTitle:       in.ProjectTitle,
		Organization:       in.Organization,
		ProjectDescription: in.ProjectDescription,
		ProjectGoals:       in.ProjectGoals,
		BudgetAmount:       in.BudgetAmount.Round(2),
		Duration:           in.Duration,
		ExpectedImpact:     in.ExpectedImpact,
		Certificates:       models.JSONStrings(in.Certificates),
		Status:             models.DonationPending,
	}
	if err := db.Create(&app).Error; err != nil {
		return nil, types.Infrastructure("donation.create", err)
	}
	return &app, nil
}

// ListDonations returns every application, oldest first. Investors only.
func ListDonations(db *gorm.DB, actor Actor) ([]DonationView, error) {
	if actor.UserType != models.UserTypeInvestor {
		return nil, types.Forbidden("donation.authorization", "Only investors can review applications")
	}

	q := quiet(db)
	var apps []models.DonationApplication
	if err := q.Order("created_at asc").Order("id asc").Find(&apps).Error; err != nil {
		return nil, types.Infrastructure("donation.list", err)
	}

	ids := make([]uuid.UUID, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.UserID)
	}
	names, err := userNames(q, ids)
	if err != nil {
		return nil, err
	}

	views := make([]DonationView, 0, len(apps))
	for _, a := range apps {
		views = append(views, DonationView{DonationApplication: a, ApplicantName: names[a.UserID]})
	}
	return views, nil
}

// ReviewDonation records an investor's decision on an application
func ReviewDonation(db *gorm.DB, actor Actor, id uuid.UUID, in DonationReview, now time.Time) (*DonationView, error) {
	if actor.UserType != models.UserTypeInvestor {
		return nil, types.Forbidden("donation.authorization", "Only investors can review applications")
	}
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	in.ReviewNotes = strings.TrimSpace(in.ReviewNotes)
	if err := validation.Struct("donation.review", in); err != nil {
		return nil, err
	}

	var app models.DonationApplication
	if err := db.Where("id = ?", id).First(&app).Error; err != nil {
		return nil, lookupError(err, "donation.not_found", "Application not found")
	}

	reviewer := actor.UserID
	reviewedAt := now.UTC()
	app.Status = in.Status
	app.ReviewNotes = in.ReviewNotes
	app.ReviewedBy = &reviewer
	app.ReviewedAt = &reviewedAt

	err := db.Model(&app).Updates(map[string]interface{}{
		"status":       app.Status,
		"review_notes": app.ReviewNotes,
		"reviewed_by":  reviewer,
		"reviewed_at":  reviewedAt,
	}).Error
	if err != nil {
		return nil, types.Infrastructure("donation.review", err)
	}

	names, err := userNames(db, []uuid.UUID{app.UserID})
	if err != nil {
		return nil, err
	}
	return &DonationView{DonationApplication: app, ApplicantName: names[app.UserID]}, nil
}
