package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/agrilearn/internal/events"
	"github.com/localnerve/agrilearn/internal/middleware"
	"github.com/localnerve/agrilearn/internal/notify"
	"github.com/localnerve/agrilearn/internal/services"
	"github.com/localnerve/agrilearn/internal/utils"
)

// CommunityHandler handles donations and live sessions
type CommunityHandler struct {
	*Deps
}

// ApplyForDonation handles POST /api/donations/apply
// @Summary Apply for donation funding
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.DonationInput true "Application"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /donations/apply [post]
func (h *CommunityHandler) ApplyForDonation(c *fiber.Ctx) error {
	var in services.DonationInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	app, err := services.ApplyForDonation(h.DB, middleware.ActorFrom(c), in)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusCreated, "Application submitted successfully", app)
}

// ListDonations handles GET /api/donations/apply/investor
// @Summary List funding applications
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /donations/apply/investor [get]
func (h *CommunityHandler) ListDonations(c *fiber.Ctx) error {
	apps, err := services.ListDonations(h.DB, middleware.ActorFrom(c))
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Applications fetched successfully", apps)
}

// ReviewDonation handles PATCH /api/donations/apply/investor/:id
// @Summary Approve or reject a funding application
// @Description The applicant is emailed the decision. A failed email does not fail the review.
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param body body services.DonationReview true "Decision"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /donations/apply/investor/{id} [patch]
func (h *CommunityHandler) ReviewDonation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in services.DonationReview
	if err := parseBody(c, &in); err != nil {
		return err
	}

	app, err := services.ReviewDonation(h.DB, middleware.ActorFrom(c), id, in, h.now())
	if err != nil {
		return err
	}

	if h.Mailer != nil {
		msg := notify.DonationDecision(app.ApplicantName, app.Email, app.ProjectTitle, app.Status, app.ReviewNotes)
		if err := h.Mailer.Send(c.UserContext(), msg); err != nil {
			h.Log.Warn("donation decision email failed", "application", app.ID, "error", err)
		}
	}
	publish(c.UserContext(), h.Events, h.Log, events.New(events.DonationReviewed, map[string]interface{}{
		"applicationId": app.ID,
		"status":        app.Status,
	}))
	return utils.DataResponse(c, fiber.StatusOK, "Application "+app.Status+" successfully", app)
}

// ListLiveSessions handles GET /api/livesessions/all
// @Summary List live sessions
// @Description Expired sessions are deactivated first. Investors and admins do not see sessions they host.
// @Tags LiveSessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /livesessions/all [get]
func (h *CommunityHandler) ListLiveSessions(c *fiber.Ctx) error {
	sessions, err := services.ListLiveSessions(h.DB, middleware.ActorFrom(c), h.now())
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Live sessions retrieved successfully", sessions)
}

// CreateLiveSession handles POST /api/livesessions
// @Summary Schedule a live session
// @Tags LiveSessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.LiveSessionInput true "Session"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /livesessions [post]
func (h *CommunityHandler) CreateLiveSession(c *fiber.Ctx) error {
	var in services.LiveSessionInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	session, err := services.CreateLiveSession(h.DB, middleware.ActorFrom(c), in, h.now())
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusCreated, "Live session created successfully", session)
}
