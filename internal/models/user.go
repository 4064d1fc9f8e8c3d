package models

import "github.com/google/uuid"

// User types
const (
	UserTypeFarmer   = "farmer"
	UserTypeBuyer    = "buyer"
	UserTypeInvestor = "investor"
)

// Seeded role names
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Role is a named permission group
type Role struct {
	Base
	Name        string `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
}

// User is a registered account. AnonymousName and AnonymousAvatar are assigned
// once at registration and never changed.
type User struct {
	Base
	FullName        string    `gorm:"size:100;uniqueIndex;not null" json:"fullName"`
	PhoneNumber     string    `gorm:"size:20;uniqueIndex;not null" json:"phoneNumber"`
	Password        string    `gorm:"size:255;not null" json:"-"`
	RoleID          uuid.UUID `gorm:"type:char(36);index" json:"roleId"`
	UserType        string    `gorm:"size:16;not null" json:"userType"`
	AnonymousName   string    `gorm:"size:100;index" json:"anonymousName"`
	AnonymousAvatar string    `gorm:"size:100" json:"anonymousAvatar"`
	ProfilePicURL   string    `gorm:"size:1024" json:"profilePicUrl,omitempty"`
}
