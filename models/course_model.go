package models

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	InstructorID uuid.UUID `gorm:"type:uuid;not null;index" json:"instructor_id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Section      *string   `gorm:"size:255" json:"section,omitempty"`
	Price        int64     `gorm:"not null" json:"price"`
	Currency     string    `gorm:"size:3;not null" json:"currency"`

	// When true, wallet discounts on purchases of this course are absorbed by
	// instructor and platform proportionally; otherwise the platform absorbs
	// the discount alone.
	AllowsDiscountAbsorption bool `gorm:"not null;default:false" json:"allows_discount_absorption"`

	Instructor User `gorm:"foreignkey:InstructorID" json:"instructor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
