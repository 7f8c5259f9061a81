package handlers

import (
	"errors"
	"log"

	"github.com/kamau254/course_finance/database"
	"github.com/kamau254/course_finance/models"
	"github.com/kamau254/course_finance/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentApprovedPayload is the payment-approval event delivered by the
// gateway integration once a student's payment settles.
type PaymentApprovedPayload struct {
	PaymentID                string `json:"payment_id" validate:"required,uuid"`
	CourseID                 string `json:"course_id" validate:"required,uuid"`
	InstructorID             string `json:"instructor_id" validate:"required,uuid"`
	StudentID                string `json:"student_id" validate:"required,uuid"`
	PaidAmount               int64  `json:"paid_amount" validate:"required,gt=0"`
	Currency                 string `json:"currency" validate:"required,iso4217"`
	BaseAmount               int64  `json:"base_amount" validate:"omitempty,gte=0"`
	WalletDiscountAmount     int64  `json:"wallet_discount_amount" validate:"omitempty,gte=0"`
	AllowsDiscountAbsorption bool   `json:"allows_discount_absorption"`
	PaymentMethod            string `json:"payment_method" validate:"required"`
}

// HandlePaymentApproved records the payment and writes the earning pair.
// Redelivery of the same event is answered with 200: the ledger insert is
// idempotent by payment id, so the retry changes nothing.
func HandlePaymentApproved(c *fiber.Ctx) error {
	var payload PaymentApprovedPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse webhook payload"})
	}
	if err := validate.Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	paymentID, _ := uuid.Parse(payload.PaymentID)
	courseID, _ := uuid.Parse(payload.CourseID)
	instructorID, _ := uuid.Parse(payload.InstructorID)
	studentID, _ := uuid.Parse(payload.StudentID)

	// An event referencing an unknown course or instructor must abort before
	// the payment row is written.
	if err := services.EnsurePaymentDependencies(courseID, instructorID); err != nil {
		return serviceError(c, err)
	}

	payment := models.Payment{
		ID:             paymentID,
		StudentID:      studentID,
		CourseID:       courseID,
		Amount:         payload.PaidAmount,
		BaseAmount:     payload.BaseAmount,
		WalletDiscount: payload.WalletDiscountAmount,
		Currency:       payload.Currency,
		PaymentMethod:  payload.PaymentMethod,
		Status:         "approved",
	}
	if err := database.DB.Create(&payment).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Printf("🔥 Failed to persist payment %s: %v", paymentID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record payment"})
		}
		// Payment row already exists; fall through so a retry after a partial
		// failure can still write the earning pair.
	}

	instructorEarning, platformEarning, err := services.RecordEarning(services.ApprovedPayment{
		PaymentID:                paymentID,
		CourseID:                 courseID,
		InstructorID:             instructorID,
		StudentID:                studentID,
		PaidAmount:               payload.PaidAmount,
		BaseAmount:               payload.BaseAmount,
		WalletDiscount:           payload.WalletDiscountAmount,
		Currency:                 payload.Currency,
		AllowsDiscountAbsorption: payload.AllowsDiscountAbsorption,
		PaymentMethod:            payload.PaymentMethod,
	})
	if err != nil {
		if services.IsConflict(err) {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Webhook already processed"})
		}
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":            "Earnings recorded successfully",
		"instructor_earning": instructorEarning,
		"platform_earning":   platformEarning,
	})
}
