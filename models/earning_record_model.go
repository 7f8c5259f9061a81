package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EarningSideInstructor = "instructor"
	EarningSidePlatform   = "platform"

	EarningStatusAccrued   = "accrued"
	EarningStatusRequested = "requested"
	EarningStatusPaid      = "paid"
	EarningStatusRejected  = "rejected"
)

// EarningRecord is one side of the paired split written for every approved
// payment. The (payment_id, side) unique index is the idempotency guard: a
// replayed payment event cannot create a second pair.
type EarningRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PaymentID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_earning_payment_side" json:"payment_id"`
	Side          string    `gorm:"size:20;not null;uniqueIndex:idx_earning_payment_side" json:"side"`
	InstructorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"instructor_id"`
	Amount        int64     `gorm:"not null" json:"amount"`
	Percent       float64   `gorm:"type:numeric(5,2);not null" json:"percent"`
	DiscountShare int64     `gorm:"not null;default:0" json:"discount_share"`
	Currency      string    `gorm:"size:3;not null" json:"currency"`
	Status        string    `gorm:"size:20;not null;default:'accrued'" json:"status"`

	// AgreementID records which revenue agreement produced the split; nil when
	// the global default percentages applied.
	AgreementID *uuid.UUID `gorm:"type:uuid" json:"agreement_id,omitempty"`

	// PayoutRequestID links the earning to the payout request that selected it.
	// The linkage is traceability bookkeeping only; the request's own amount is
	// what gets transferred.
	PayoutRequestID *uuid.UUID `gorm:"type:uuid;index" json:"payout_request_id,omitempty"`

	Payment Payment `gorm:"foreignkey:PaymentID" json:"payment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeUpdate rejects mutation of earnings that have reached paid status.
func (e *EarningRecord) BeforeUpdate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		return nil
	}

	var current EarningRecord
	if err := tx.Session(&gorm.Session{NewDB: true}).Select("status").First(&current, "id = ?", e.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if current.Status == EarningStatusPaid {
		return errors.New("earning record is immutable once paid")
	}
	return nil
}
