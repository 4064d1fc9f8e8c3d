package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/agrilearn/internal/middleware"
	"github.com/localnerve/agrilearn/internal/services"
	"github.com/localnerve/agrilearn/internal/types"
	"github.com/localnerve/agrilearn/internal/utils"
)

// AuthHandler handles registration, login and the caller's profile
type AuthHandler struct {
	*Deps
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	User      services.Profile `json:"user"`
}

// Register handles POST /api/auth/register
// @Summary Register an account
// @Description Creates an account with a generated anonymous identity
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Registration"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	profile, err := services.Register(c.UserContext(), h.DB, h.Identities, h.BcryptCost, in)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusCreated, "User registered successfully", profile)
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Exchanges a phone number and password for a session token, also set as the session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Credentials"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in services.LoginInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	profile, err := services.Login(h.DB, in)
	if err != nil {
		return err
	}

	token, expires, err := h.Signer.IssueToken(middleware.Session{
		UserID:   profile.ID,
		Role:     profile.RoleName,
		UserType: profile.UserType,
	}, h.now())
	if err != nil {
		return types.Infrastructure("auth.token", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   c.Protocol() == "https",
	})
	return utils.DataResponse(c, fiber.StatusOK, "Login successful", LoginResult{
		Token:     token,
		ExpiresAt: expires,
		User:      *profile,
	})
}

// Profile handles GET /api/profile
// @Summary Current profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /profile [get]
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	profile, err := services.GetProfile(h.DB, middleware.ActorFrom(c).UserID)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Profile retrieved successfully", profile)
}
