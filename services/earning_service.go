package services

import (
	"errors"
	"fmt"

	config "github.com/kamau254/course_finance/configs"
	"github.com/kamau254/course_finance/database"
	"github.com/kamau254/course_finance/models"
	"github.com/kamau254/course_finance/notifications"
	"github.com/kamau254/course_finance/websocket"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovedPayment is the payment-approval event consumed from the gateway
// boundary.
type ApprovedPayment struct {
	PaymentID                uuid.UUID
	CourseID                 uuid.UUID
	InstructorID             uuid.UUID
	StudentID                uuid.UUID
	PaidAmount               int64
	BaseAmount               int64
	WalletDiscount           int64
	Currency                 string
	AllowsDiscountAbsorption bool
	PaymentMethod            string
}

// EnsurePaymentDependencies verifies the course and instructor a payment event
// references exist. Callers run it before persisting anything so an event with
// unknown references aborts without leaving writes behind.
func EnsurePaymentDependencies(courseID, instructorID uuid.UUID) error {
	var course models.Course
	if err := database.DB.Select("id").First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundError("course %s not found", courseID)
		}
		return err
	}

	var instructor models.User
	if err := database.DB.Select("id").First(&instructor, "id = ?", instructorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundError("instructor %s not found", instructorID)
		}
		return err
	}

	return nil
}

// RecordEarning writes the instructor/platform earning pair for an approved
// payment. Idempotent by payment id: the pair is inserted in one statement
// guarded by the (payment_id, side) unique index, so a replayed event gets a
// conflict error and the ledger keeps exactly one pair. Audit and
// notifications run after the insert and are best-effort.
func RecordEarning(event ApprovedPayment) (*models.EarningRecord, *models.EarningRecord, error) {
	if event.PaidAmount <= 0 {
		return nil, nil, validationError("paid amount must be positive, got %d", event.PaidAmount)
	}

	var course models.Course
	if err := database.DB.First(&course, "id = ?", event.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, notFoundError("course %s not found", event.CourseID)
		}
		return nil, nil, err
	}

	var instructor models.User
	if err := database.DB.First(&instructor, "id = ?", event.InstructorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, notFoundError("instructor %s not found", event.InstructorID)
		}
		return nil, nil, err
	}

	settings := config.LoadSettings()
	split, err := ResolveActiveSplit(event.InstructorID, settings)
	if err != nil {
		return nil, nil, err
	}

	result := ComputeSplit(event.PaidAmount, event.BaseAmount, event.WalletDiscount, event.AllowsDiscountAbsorption, split)

	pair := []models.EarningRecord{
		{
			PaymentID:     event.PaymentID,
			Side:          models.EarningSideInstructor,
			InstructorID:  event.InstructorID,
			Amount:        result.InstructorAmount,
			Percent:       split.InstructorPct,
			DiscountShare: result.InstructorDiscount,
			Currency:      event.Currency,
			Status:        models.EarningStatusAccrued,
			AgreementID:   split.AgreementID,
		},
		{
			PaymentID:     event.PaymentID,
			Side:          models.EarningSidePlatform,
			InstructorID:  event.InstructorID,
			Amount:        result.PlatformAmount,
			Percent:       split.PlatformPct,
			DiscountShare: result.PlatformDiscount,
			Currency:      event.Currency,
			Status:        models.EarningStatusAccrued,
			AgreementID:   split.AgreementID,
		},
	}

	if err := database.DB.Create(&pair).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, conflictError("earnings already recorded for payment %s", event.PaymentID)
		}
		return nil, nil, err
	}

	RecordAudit("earning_record", event.PaymentID.String(), "earning.recorded", "system", "system", nil, pair)

	go notifications.SendEmail(
		instructor.FullName,
		instructor.Email,
		"You Have a New Earning",
		fmt.Sprintf("<h1>New Earning</h1><p>Hello %s,</p><p>A student purchase of <b>%s</b> credited %d %s (minor units) to your balance.</p>",
			instructor.FullName, course.Title, result.InstructorAmount, event.Currency),
	)
	go websocket.PushBalanceRefresh(event.InstructorID)

	return &pair[0], &pair[1], nil
}

// ListEarnings pages through an instructor's earnings, newest first.
func ListEarnings(instructorID uuid.UUID, page, limit int) ([]models.EarningRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := database.DB.Model(&models.EarningRecord{}).
		Where("instructor_id = ? AND side = ?", instructorID, models.EarningSideInstructor).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var earnings []models.EarningRecord
	err := database.DB.
		Where("instructor_id = ? AND side = ?", instructorID, models.EarningSideInstructor).
		Preload("Payment.Student").
		Preload("Payment.Course").
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&earnings).Error
	return earnings, total, err
}
