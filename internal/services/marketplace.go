package services

import (
	"strings"

	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/types"
	"github.com/localnerve/agrilearn/internal/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductInput is the body of a new listing
type ProductInput struct {
	Name        string          `json:"name" validate:"required,min=2,max=255"`
	Description string          `json:"description" validate:"max=2000"`
	Category    string          `json:"category" validate:"max=100"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit" validate:"max=32"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	ImageURL    string          `json:"imageUrl" validate:"omitempty,url"`
}

// ProductPage is one page of the marketplace
type ProductPage struct {
	Products []models.Product `json:"products"`
	PageInfo
}

// CreateProduct lists a product for sale. Farmers only.
func CreateProduct(db *gorm.DB, actor Actor, in ProductInput) (*models.Product, error) {
	if actor.UserType != models.UserTypeFarmer {
		return nil, types.Forbidden("product.authorization", "Only farmers can list products")
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct("product.validation", in); err != nil {
		return nil, err
	}
	if !in.Price.IsPositive() {
		return nil, types.ValidationFailed("product.validation", "Invalid input", map[string]string{
			"price": "must be greater than 0",
		})
	}

	product := models.Product{
		SellerID:    actor.UserID,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price.Round(2),
		Unit:        in.Unit,
		Quantity:    in.Quantity,
		ImageURL:    in.ImageURL,
	}
	if err := db.Create(&product).Error; err != nil {
		return nil, types.Infrastructure("product.create", err)
	}
	return &product, nil
}

// ListProducts pages through the marketplace, newest first
func ListProducts(db *gorm.DB, req PageRequest) (*ProductPage, error) {
	q := quiet(db)

	var total int64
	if err := q.Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, types.Infrastructure("product.count", err)
	}
	info, offset := resolvePage(total, req)

	var products []models.Product
	err := q.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(info.Limit).
		Find(&products).Error
	if err != nil {
		return nil, types.Infrastructure("product.list", err)
	}
	return &ProductPage{Products: products, PageInfo: info}, nil
}

// ListMyProducts returns the actor's own listings, newest first
func ListMyProducts(db *gorm.DB, actor Actor) ([]models.Product, error) {
	var products []models.Product
	err := quiet(db).Where("seller_id = ?", actor.UserID).
		Order("created_at desc").Order("id desc").
		Find(&products).Error
	if err != nil {
		return nil, types.Infrastructure("product.list", err)
	}
	return products, nil
}
