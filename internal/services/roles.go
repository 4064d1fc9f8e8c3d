package services

import (
	"strings"

	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/types"
	"github.com/localnerve/agrilearn/internal/validation"
	"gorm.io/gorm"
)

// RoleInput is the body of a new role
type RoleInput struct {
	Name        string `json:"name" validate:"required,max=64"`
	Description string `json:"description" validate:"required,max=255"`
}

// CreateRole adds a role. Admins only.
func CreateRole(db *gorm.DB, actor Actor, in RoleInput) (*models.Role, error) {
	if !actor.IsAdmin() {
		return nil, types.Forbidden("role.authorization", "Only admins can create roles")
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct("role.validation", in); err != nil {
		return nil, err
	}

	role := models.Role{Name: in.Name, Description: in.Description}
	if err := db.Create(&role).Error; err != nil {
		if isDuplicate(err) {
			return nil, types.Conflict("role.exists", "Role already exists")
		}
		return nil, types.Infrastructure("role.create", err)
	}
	return &role, nil
}

// ListRoles returns every role
func ListRoles(db *gorm.DB) ([]models.Role, error) {
	var roles []models.Role
	if err := quiet(db).Order("name asc").Find(&roles).Error; err != nil {
		return nil, types.Infrastructure("role.list", err)
	}
	if len(roles) == 0 {
		return nil, types.NotFound("role.not_found", "No roles found")
	}
	return roles, nil
}
