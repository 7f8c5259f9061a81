package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AgreementStatusPending  = "pending"
	AgreementStatusApproved = "approved"
	AgreementStatusRejected = "rejected"
	AgreementStatusExpired  = "expired"
)

// RevenueAgreement is a versioned revenue-split contract between the platform
// and an instructor. At most one approved+active agreement exists per
// instructor; a partial unique index created in database.Migrate backs that.
type RevenueAgreement struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	InstructorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"instructor_id"`
	PlatformPct   float64   `gorm:"type:numeric(5,2);not null" json:"platform_pct"`
	InstructorPct float64   `gorm:"type:numeric(5,2);not null" json:"instructor_pct"`
	Status        string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	IsActive      bool      `gorm:"not null;default:false" json:"is_active"`
	Version       int       `gorm:"not null;default:1" json:"version"`

	PreviousAgreementID *uuid.UUID `gorm:"type:uuid" json:"previous_agreement_id,omitempty"`

	Instructor User `gorm:"foreignkey:InstructorID" json:"instructor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
