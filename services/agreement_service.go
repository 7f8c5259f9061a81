package services

import (
	"errors"
	"math"

	config "github.com/kamau254/course_finance/configs"
	"github.com/kamau254/course_finance/database"
	"github.com/kamau254/course_finance/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResolveActiveSplit returns the split from the newest approved and active
// revenue agreement for the instructor, falling back to the platform default
// percentages from the settings snapshot. Pure read.
func ResolveActiveSplit(instructorID uuid.UUID, settings config.Settings) (Split, error) {
	var agreement models.RevenueAgreement
	err := database.DB.
		Where("instructor_id = ? AND status = ? AND is_active = ?", instructorID, models.AgreementStatusApproved, true).
		Order("version desc").
		First(&agreement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Split{
				InstructorPct: settings.DefaultInstructorPct,
				PlatformPct:   settings.DefaultPlatformPct,
				Source:        "default",
			}, nil
		}
		return Split{}, err
	}

	agreementID := agreement.ID
	return Split{
		InstructorPct: agreement.InstructorPct,
		PlatformPct:   agreement.PlatformPct,
		AgreementID:   &agreementID,
		Version:       agreement.Version,
		Source:        "agreement",
	}, nil
}

type NewAgreementInput struct {
	InstructorID  uuid.UUID
	PlatformPct   float64
	InstructorPct float64
}

// CreateAgreement drafts a new revenue agreement for an instructor. The draft
// is pending until an admin approves it; versions chain through
// PreviousAgreementID.
func CreateAgreement(input NewAgreementInput, actorID string) (*models.RevenueAgreement, error) {
	if math.Abs(input.PlatformPct+input.InstructorPct-100) > 0.01 {
		return nil, validationError("platform and instructor percentages must sum to 100, got %.2f", input.PlatformPct+input.InstructorPct)
	}
	if input.PlatformPct < 0 || input.InstructorPct < 0 {
		return nil, validationError("split percentages cannot be negative")
	}

	var instructor models.User
	if err := database.DB.First(&instructor, "id = ?", input.InstructorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("instructor %s not found", input.InstructorID)
		}
		return nil, err
	}

	agreement := models.RevenueAgreement{
		InstructorID:  input.InstructorID,
		PlatformPct:   input.PlatformPct,
		InstructorPct: input.InstructorPct,
		Status:        models.AgreementStatusPending,
		Version:       1,
	}

	var latest models.RevenueAgreement
	err := database.DB.
		Where("instructor_id = ?", input.InstructorID).
		Order("version desc").
		First(&latest).Error
	if err == nil {
		previousID := latest.ID
		agreement.Version = latest.Version + 1
		agreement.PreviousAgreementID = &previousID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := database.DB.Create(&agreement).Error; err != nil {
		return nil, err
	}

	RecordAudit("revenue_agreement", agreement.ID.String(), "agreement.drafted", actorID, "admin", nil, agreement)

	return &agreement, nil
}

// ApproveAgreement activates a pending agreement and expires the previously
// active one in the same transaction, keeping the one-active-per-instructor
// invariant (the partial unique index is the backstop).
func ApproveAgreement(agreementID uuid.UUID, actorID string) (*models.RevenueAgreement, error) {
	var agreement models.RevenueAgreement
	if err := database.DB.First(&agreement, "id = ?", agreementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("revenue agreement %s not found", agreementID)
		}
		return nil, err
	}

	if agreement.Status != models.AgreementStatusPending {
		return nil, conflictError("only pending agreements can be approved; agreement is %s", agreement.Status)
	}

	previous := agreement

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RevenueAgreement{}).
			Where("instructor_id = ? AND status = ? AND is_active = ?", agreement.InstructorID, models.AgreementStatusApproved, true).
			Updates(map[string]interface{}{"is_active": false, "status": models.AgreementStatusExpired}).Error; err != nil {
			return err
		}

		agreement.Status = models.AgreementStatusApproved
		agreement.IsActive = true
		return tx.Model(&agreement).
			Select("status", "is_active").
			Updates(map[string]interface{}{"status": models.AgreementStatusApproved, "is_active": true}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflictError("instructor %s already has an active agreement", agreement.InstructorID)
		}
		return nil, err
	}

	RecordAudit("revenue_agreement", agreement.ID.String(), "agreement.approved", actorID, "admin", previous, agreement)

	return &agreement, nil
}

// RejectAgreement declines a pending draft.
func RejectAgreement(agreementID uuid.UUID, actorID string) (*models.RevenueAgreement, error) {
	var agreement models.RevenueAgreement
	if err := database.DB.First(&agreement, "id = ?", agreementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("revenue agreement %s not found", agreementID)
		}
		return nil, err
	}

	if agreement.Status != models.AgreementStatusPending {
		return nil, conflictError("only pending agreements can be rejected; agreement is %s", agreement.Status)
	}

	previous := agreement
	agreement.Status = models.AgreementStatusRejected
	if err := database.DB.Model(&agreement).Select("status").Updates(map[string]interface{}{"status": models.AgreementStatusRejected}).Error; err != nil {
		return nil, err
	}

	RecordAudit("revenue_agreement", agreement.ID.String(), "agreement.rejected", actorID, "admin", previous, agreement)

	return &agreement, nil
}
