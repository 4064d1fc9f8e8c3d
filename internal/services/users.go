package services

import (
	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/types"
	"gorm.io/gorm"
)

// Investor is the public view of an investor account
type Investor struct {
	ID            uuid.UUID `json:"id"`
	FullName      string    `json:"fullName"`
	ProfilePicURL string    `json:"profilePicUrl,omitempty"`
}

// ListUsers returns every account except the caller's. Admins only.
func ListUsers(db *gorm.DB, actor Actor) ([]Profile, error) {
	if !actor.IsAdmin() {
		return nil, types.Forbidden("user.authorization", "Only admins can list users")
	}

	q := quiet(db)
	var users []models.User
	if err := q.Where("id <> ?", actor.UserID).Order("created_at desc").Find(&users).Error; err != nil {
		return nil, types.Infrastructure("user.list", err)
	}

	var roles []models.Role
	if err := q.Find(&roles).Error; err != nil {
		return nil, types.Infrastructure("user.roles", err)
	}
	roleNames := make(map[uuid.UUID]string, len(roles))
	for _, r := range roles {
		roleNames[r.ID] = r.Name
	}

	out := make([]Profile, 0, len(users))
	for _, u := range users {
		out = append(out, Profile{User: u, RoleName: roleNames[u.RoleID]})
	}
	return out, nil
}

// ListInvestors returns the public view of investor accounts
func ListInvestors(db *gorm.DB) ([]Investor, error) {
	var users []models.User
	err := quiet(db).Select("id", "full_name", "profile_pic_url").
		Where("user_type = ?", models.UserTypeInvestor).
		Order("full_name asc").
		Find(&users).Error
	if err != nil {
		return nil, types.Infrastructure("investor.list", err)
	}
	out := make([]Investor, 0, len(users))
	for _, u := range users {
		out = append(out, Investor{ID: u.ID, FullName: u.FullName, ProfilePicURL: u.ProfilePicURL})
	}
	return out, nil
}
