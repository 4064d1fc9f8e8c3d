package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Donation application statuses
const (
	DonationPending  = "pending"
	DonationApproved = "approved"
	DonationRejected = "rejected"
)

// DonationApplication is a funding request reviewed by investors
type DonationApplication struct {
	Base
	UserID             uuid.UUID       `gorm:"type:char(36);index;not null" json:"userId"`
	Email              string          `gorm:"size:255;not null" json:"email"`
	ProjectTitle       string          `gorm:"size:255;not null" json:"projectTitle"`
	Organization       string          `gorm:"size:255" json:"organization"`
	ProjectDescription string          `gorm:"size:4000;not null" json:"projectDescription"`
	ProjectGoals       string          `gorm:"size:4000" json:"projectGoals"`
	BudgetAmount       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"budgetAmount"`
	Duration           string          `gorm:"size:100" json:"duration"`
	ExpectedImpact     string          `gorm:"size:4000" json:"expectedImpact"`
	Certificates       JSON            `json:"certificates"`
	Status             string          `gorm:"size:16;index;not null" json:"status"`
	ReviewNotes        string          `gorm:"size:2000" json:"reviewNotes,omitempty"`
	ReviewedBy         *uuid.UUID      `gorm:"type:char(36)" json:"reviewedBy,omitempty"`
	ReviewedAt         *time.Time      `json:"reviewedAt,omitempty"`
}

// LiveSession is a scheduled live class
type LiveSession struct {
	Base
	HostID          uuid.UUID `gorm:"type:char(36);index;not null" json:"hostId"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     string    `gorm:"size:1024" json:"description,omitempty"`
	MeetingURL      string    `gorm:"size:1024" json:"meetingUrl,omitempty"`
	ScheduledAt     time.Time `gorm:"index;not null" json:"scheduledAt"`
	DurationMinutes int       `gorm:"not null" json:"duration"`
	IsActive        bool      `gorm:"index;not null" json:"isActive"`
}

// EndsAt is the scheduled end of the session
func (s LiveSession) EndsAt() time.Time {
	return s.ScheduledAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// Product is a marketplace listing published by a farmer
type Product struct {
	Base
	SellerID    uuid.UUID       `gorm:"type:char(36);index;not null" json:"sellerId"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"size:2000" json:"description"`
	Category    string          `gorm:"size:100" json:"category"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Unit        string          `gorm:"size:32" json:"unit"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	ImageURL    string          `gorm:"size:1024" json:"imageUrl,omitempty"`
}
