package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PayoutStatusPending   = "pending"
	PayoutStatusApproved  = "approved"
	PayoutStatusRejected  = "rejected"
	PayoutStatusCancelled = "cancelled"
)

// PayoutRequest is an instructor's claim for a fund transfer. RequestedAmount
// is the authoritative transfer amount; the linked earnings are bookkeeping.
// A partial unique index (database.Migrate) allows at most one pending request
// per instructor.
type PayoutRequest struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Reference       string    `gorm:"size:20;not null;unique" json:"reference"`
	InstructorID    uuid.UUID `gorm:"type:uuid;not null;index" json:"instructor_id"`
	RequestedAmount int64     `gorm:"not null" json:"requested_amount"`
	Currency        string    `gorm:"size:3;not null" json:"currency"`
	Status          string    `gorm:"size:20;not null;default:'pending'" json:"status"`

	PaymentMethod   string  `gorm:"size:50;not null" json:"payment_method"`
	ReceiverName    string  `gorm:"size:255;not null" json:"receiver_name"`
	ReceiverAccount string  `gorm:"size:255;not null" json:"receiver_account"`
	ReceiverBank    *string `gorm:"size:255" json:"receiver_bank,omitempty"`

	ProofOfPaymentURL *string `gorm:"size:512" json:"proof_of_payment_url,omitempty"`
	RejectionReason   *string `gorm:"type:text" json:"rejection_reason,omitempty"`
	CancelReason      *string `gorm:"type:text" json:"cancel_reason,omitempty"`

	// SecurityFlags carries the suspicious-activity heuristics that fired at
	// creation time, comma separated. Flags never block the request.
	SecurityFlags *string `gorm:"size:255" json:"security_flags,omitempty"`
	RequestIP     string  `gorm:"size:45" json:"-"`

	RequestedAt time.Time  `gorm:"not null" json:"requested_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	Instructor User `gorm:"foreignkey:InstructorID" json:"instructor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
