package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment is the persisted payment-approval event consumed from the payment
// gateway integration. The ID is the gateway's payment reference and doubles
// as the idempotency key for the earning ledger.
type Payment struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StudentID      uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	CourseID       uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Amount         int64     `gorm:"not null" json:"amount"`
	BaseAmount     int64     `gorm:"not null" json:"base_amount"`
	WalletDiscount int64     `gorm:"not null;default:0" json:"wallet_discount"`
	Currency       string    `gorm:"size:3;not null" json:"currency"`
	PaymentMethod  string    `gorm:"size:50;not null" json:"payment_method"`
	Status         string    `gorm:"size:20;not null;default:'approved'" json:"status"`

	Student User   `gorm:"foreignkey:StudentID" json:"student,omitempty"`
	Course  Course `gorm:"foreignkey:CourseID" json:"course,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
