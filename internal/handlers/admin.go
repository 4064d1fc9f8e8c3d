package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/agrilearn/internal/middleware"
	"github.com/localnerve/agrilearn/internal/services"
	"github.com/localnerve/agrilearn/internal/utils"
)

// AdminHandler handles roles, users and the investor directory
type AdminHandler struct {
	*Deps
}

// ListRoles handles GET /api/roles
// @Summary List roles
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /roles [get]
func (h *AdminHandler) ListRoles(c *fiber.Ctx) error {
	roles, err := services.ListRoles(h.DB)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Roles retrieved successfully", roles)
}

// CreateRole handles POST /api/roles
// @Summary Create a role
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.RoleInput true "Role"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /roles [post]
func (h *AdminHandler) CreateRole(c *fiber.Ctx) error {
	var in services.RoleInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	role, err := services.CreateRole(h.DB, middleware.ActorFrom(c), in)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusCreated, "Role created successfully", role)
}

// ListUsers handles GET /api/users
// @Summary List every other account
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := services.ListUsers(h.DB, middleware.ActorFrom(c))
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Users retrieved successfully", users)
}

// ListInvestors handles GET /api/investors
// @Summary Investor directory
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /investors [get]
func (h *AdminHandler) ListInvestors(c *fiber.Ctx) error {
	investors, err := services.ListInvestors(h.DB)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Investors retrieved successfully", investors)
}
