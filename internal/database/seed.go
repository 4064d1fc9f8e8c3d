package database

import (
	"encoding/json"
	"fmt"

	"github.com/localnerve/agrilearn/data"
	"github.com/localnerve/agrilearn/internal/models"
	"gorm.io/gorm"
)

type seedRole struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SeedRoles makes sure the embedded roles exist. Existing rows are left untouched.
func SeedRoles(db *gorm.DB) error {
	var roles []seedRole
	if err := json.Unmarshal(data.SeedRoles, &roles); err != nil {
		return fmt.Errorf("failed to parse seed roles: %w", err)
	}

	for _, r := range roles {
		var role models.Role
		err := db.Where(models.Role{Name: r.Name}).
			Attrs(models.Role{Description: r.Description}).
			FirstOrCreate(&role).Error
		if err != nil {
			return fmt.Errorf("failed to seed role %s: %w", r.Name, err)
		}
	}

	return nil
}
