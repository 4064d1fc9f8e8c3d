package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/agrilearn/internal/middleware"
	"github.com/localnerve/agrilearn/internal/services"
	"github.com/localnerve/agrilearn/internal/utils"
)

// MarketplaceHandler handles product listings
type MarketplaceHandler struct {
	*Deps
}

// ListProducts handles GET /api/products
// @Summary Browse products
// @Tags Marketplace
// @Produce json
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size (default 8)"
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /products [get]
func (h *MarketplaceHandler) ListProducts(c *fiber.Ctx) error {
	page, err := services.ListProducts(h.DB, parsePage(c))
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Products retrieved successfully", page)
}

// ListMyProducts handles GET /api/products/mine
// @Summary The caller's listings
// @Tags Marketplace
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /products/mine [get]
func (h *MarketplaceHandler) ListMyProducts(c *fiber.Ctx) error {
	products, err := services.ListMyProducts(h.DB, middleware.ActorFrom(c))
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusOK, "Products retrieved successfully", products)
}

// CreateProduct handles POST /api/products
// @Summary List a product for sale
// @Tags Marketplace
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ProductInput true "Product"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /products [post]
func (h *MarketplaceHandler) CreateProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	product, err := services.CreateProduct(h.DB, middleware.ActorFrom(c), in)
	if err != nil {
		return err
	}
	return utils.DataResponse(c, fiber.StatusCreated, "Product created successfully", product)
}
