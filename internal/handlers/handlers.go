package handlers

import (
	"time"

	"github.com/localnerve/agrilearn/internal/config"
	"github.com/localnerve/agrilearn/internal/events"
	"github.com/localnerve/agrilearn/internal/logger"
	"github.com/localnerve/agrilearn/internal/middleware"
	"github.com/localnerve/agrilearn/internal/notify"
	"github.com/localnerve/agrilearn/internal/services"
	"gorm.io/gorm"
)

// Deps are the collaborators shared by every handler. Uploader, Events and
// Mailer may be nil; the features that need them degrade instead of failing.
type Deps struct {
	Config     *config.Config
	DB         *gorm.DB
	Log        *logger.Logger
	Signer     *middleware.Signer
	Identities *services.IdentityGenerator
	Scope      services.CompletionScope
	BcryptCost int
	Uploader   services.MediaUploader
	Events     events.Publisher
	Mailer     notify.Mailer
	Now        func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}
