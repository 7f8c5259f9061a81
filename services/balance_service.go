package services

import (
	"github.com/kamau254/course_finance/database"
	"github.com/kamau254/course_finance/models"
	"github.com/google/uuid"
)

// AvailableBalance projects an instructor's withdrawable balance from the
// ledger and the payout workflow:
//
//	Σ accrued earnings − Σ pending requested − Σ approved requested
//
// Requested amounts are authoritative regardless of the status of the
// earnings a request references.
func AvailableBalance(instructorID uuid.UUID) (int64, error) {
	var accrued int64
	err := database.DB.Model(&models.EarningRecord{}).
		Where("instructor_id = ? AND side = ? AND status = ?", instructorID, models.EarningSideInstructor, models.EarningStatusAccrued).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&accrued)
	if err != nil {
		return 0, err
	}

	var locked int64
	err = database.DB.Model(&models.PayoutRequest{}).
		Where("instructor_id = ? AND status IN ?", instructorID, []string{models.PayoutStatusPending, models.PayoutStatusApproved}).
		Select("COALESCE(SUM(requested_amount), 0)").
		Row().Scan(&locked)
	if err != nil {
		return 0, err
	}

	return accrued - locked, nil
}

type EarningsSummary struct {
	TotalEarned     int64 `json:"total_earned"`
	Accrued         int64 `json:"accrued"`
	LockedInPayouts int64 `json:"locked_in_payouts"`
	Withdrawn       int64 `json:"withdrawn"`
	Available       int64 `json:"available"`
}

// GetEarningsSummary backs the instructor dashboard summary view.
func GetEarningsSummary(instructorID uuid.UUID) (EarningsSummary, error) {
	var summary EarningsSummary

	err := database.DB.Model(&models.EarningRecord{}).
		Where("instructor_id = ? AND side = ?", instructorID, models.EarningSideInstructor).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&summary.TotalEarned)
	if err != nil {
		return summary, err
	}

	err = database.DB.Model(&models.EarningRecord{}).
		Where("instructor_id = ? AND side = ? AND status = ?", instructorID, models.EarningSideInstructor, models.EarningStatusAccrued).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&summary.Accrued)
	if err != nil {
		return summary, err
	}

	err = database.DB.Model(&models.PayoutRequest{}).
		Where("instructor_id = ? AND status = ?", instructorID, models.PayoutStatusPending).
		Select("COALESCE(SUM(requested_amount), 0)").
		Row().Scan(&summary.LockedInPayouts)
	if err != nil {
		return summary, err
	}

	err = database.DB.Model(&models.PayoutRequest{}).
		Where("instructor_id = ? AND status = ?", instructorID, models.PayoutStatusApproved).
		Select("COALESCE(SUM(requested_amount), 0)").
		Row().Scan(&summary.Withdrawn)
	if err != nil {
		return summary, err
	}

	summary.Available = summary.Accrued - summary.LockedInPayouts - summary.Withdrawn
	return summary, nil
}
