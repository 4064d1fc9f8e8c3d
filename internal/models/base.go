package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the uuid primary key and timestamps shared by every table
type Base struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a new id when none was set
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All lists every model in migration order
func All() []interface{} {
	return []interface{}{
		&Role{},
		&User{},
		&Course{},
		&Module{},
		&ModuleCompletion{},
		&Enrollment{},
		&CourseProgress{},
		&Certificate{},
		&Post{},
		&Comment{},
		&CommentReply{},
		&PostLike{},
		&CommentLike{},
		&DonationApplication{},
		&LiveSession{},
		&Product{},
	}
}
