package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/types"
	"github.com/localnerve/agrilearn/internal/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterInput is the body of a registration
type RegisterInput struct {
	FullName    string `json:"fullName" validate:"required,min=5,max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"required,rwphone"`
	Password    string `json:"password" validate:"required,strongpassword"`
	UserType    string `json:"userType" validate:"omitempty,oneof=farmer buyer investor"`
}

// LoginInput is the body of a login
type LoginInput struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

// Profile is a user with the name of their role
type Profile struct {
	models.User
	RoleName string `json:"role"`
}

// Register creates an account with a hashed password, the default role and a
// freshly generated anonymous identity. Identity generation cannot fail the registration.
func Register(ctx context.Context, db *gorm.DB, identities *IdentityGenerator, bcryptCost int, in RegisterInput) (*Profile, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.UserType = strings.ToLower(strings.TrimSpace(in.UserType))
	if err := validation.Struct("auth.validation", in); err != nil {
		return nil, err
	}
	if in.UserType == "" {
		in.UserType = models.UserTypeBuyer
	}

	var existing int64
	if err := db.Model(&models.User{}).Where("phone_number = ?", in.PhoneNumber).Count(&existing).Error; err != nil {
		return nil, types.Infrastructure("auth.lookup", err)
	}
	if existing > 0 {
		return nil, types.Conflict("auth.phone_taken", "User with this phone number already exists")
	}

	var role models.Role
	if err := db.Where("name = ?", models.RoleUser).First(&role).Error; err != nil {
		return nil, types.Infrastructure("auth.default_role", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, types.Infrastructure("auth.hash", err)
	}

	identity := identities.Generate(ctx)

	user := models.User{
		FullName:        in.FullName,
		PhoneNumber:     in.PhoneNumber,
		Password:        string(hash),
		RoleID:          role.ID,
		UserType:        in.UserType,
		AnonymousName:   identity.Name,
		AnonymousAvatar: identity.Avatar,
	}
	if err := db.Create(&user).Error; err != nil {
		if isDuplicate(err) {
			return nil, types.Conflict("auth.user_exists", "User with this name or phone number already exists")
		}
		return nil, types.Infrastructure("auth.create", err)
	}

	return &Profile{User: user, RoleName: role.Name}, nil
}

// Login checks the phone number and password
func Login(db *gorm.DB, in LoginInput) (*Profile, error) {
	invalid := types.Unauthorized("auth.credentials", "Invalid phone number or password")

	if err := validation.Struct("auth.validation", in); err != nil {
		return nil, err
	}

	var user models.User
	if err := db.Where("phone_number = ?", strings.TrimSpace(in.PhoneNumber)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid
		}
		return nil, types.Infrastructure("auth.lookup", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, invalid
	}

	return GetProfile(db, user.ID)
}

// GetProfile returns a user with their role name
func GetProfile(db *gorm.DB, userID uuid.UUID) (*Profile, error) {
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, lookupError(err, "user.not_found", "User not found")
	}
	var role models.Role
	if err := db.Where("id = ?", user.RoleID).Limit(1).Find(&role).Error; err != nil {
		return nil, types.Infrastructure("user.role", err)
	}
	return &Profile{User: user, RoleName: role.Name}, nil
}
