package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	config "github.com/kamau254/course_finance/configs"
	"github.com/kamau254/course_finance/database"
	"github.com/kamau254/course_finance/models"
	"github.com/kamau254/course_finance/notifications"
	"github.com/kamau254/course_finance/utils"
	"github.com/kamau254/course_finance/websocket"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

var clock clockwork.Clock = clockwork.NewRealClock()

type CreatePayoutInput struct {
	PaymentMethod   string
	ReceiverName    string
	ReceiverAccount string
	ReceiverBank    *string
	Currency        string
	RequestedAmount *int64
	RequestIP       string
}

// CreatePayoutRequest opens a pending payout claim for an instructor. The
// requested amount (defaulting to the full available balance) is the
// authoritative transfer amount; the earnings selected below are linked for
// traceability only and never alter it. The partial unique index on pending
// requests is the real one-pending-per-instructor guard; the count check
// exists to answer with a friendly conflict.
func CreatePayoutRequest(instructorID uuid.UUID, input CreatePayoutInput) (*models.PayoutRequest, error) {
	settings := config.LoadSettings()

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	minimum, supported := settings.PayoutMinimums[currency]
	if !supported {
		return nil, validationError("unsupported payout currency %q", input.Currency)
	}

	var pendingCount int64
	if err := database.DB.Model(&models.PayoutRequest{}).
		Where("instructor_id = ? AND status = ?", instructorID, models.PayoutStatusPending).
		Count(&pendingCount).Error; err != nil {
		return nil, err
	}
	if pendingCount > 0 {
		return nil, conflictError("a pending payout request already exists for this instructor")
	}

	var rejectedCount int64
	if err := database.DB.Model(&models.PayoutRequest{}).
		Where("instructor_id = ? AND status = ?", instructorID, models.PayoutStatusRejected).
		Count(&rejectedCount).Error; err != nil {
		return nil, err
	}
	if rejectedCount > 0 {
		return nil, conflictError("a rejected payout request is outstanding; re-request it instead of opening a new one")
	}

	var candidates []models.EarningRecord
	if err := database.DB.
		Where("instructor_id = ? AND side = ? AND status IN ? AND payout_request_id IS NULL",
			instructorID, models.EarningSideInstructor,
			[]string{models.EarningStatusAccrued, models.EarningStatusRejected}).
		Order("amount asc").
		Find(&candidates).Error; err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, conflictError("no eligible earnings available for a payout request")
	}

	available, err := AvailableBalance(instructorID)
	if err != nil {
		return nil, err
	}

	amount := available
	if input.RequestedAmount != nil {
		amount = *input.RequestedAmount
		if amount <= 0 {
			return nil, validationError("requested amount must be a positive integer, got %d", amount)
		}
		if amount > available {
			return nil, validationError("requested amount %d exceeds available balance %d", amount, available)
		}
	}
	if amount < minimum {
		return nil, validationError("requested amount %d is below the %s minimum of %d", amount, currency, minimum)
	}

	selected := selectEarnings(candidates, amount)
	flags := DetectSuspiciousActivity(instructorID, input.RequestIP, 24)

	reference, err := utils.GeneratePayoutReference(database.DB)
	if err != nil {
		return nil, err
	}

	request := models.PayoutRequest{
		Reference:       reference,
		InstructorID:    instructorID,
		RequestedAmount: amount,
		Currency:        currency,
		Status:          models.PayoutStatusPending,
		PaymentMethod:   input.PaymentMethod,
		ReceiverName:    input.ReceiverName,
		ReceiverAccount: input.ReceiverAccount,
		ReceiverBank:    input.ReceiverBank,
		RequestIP:       input.RequestIP,
		RequestedAt:     clock.Now(),
	}
	if len(flags) > 0 {
		joined := strings.Join(flags, ",")
		request.SecurityFlags = &joined
	}

	selectedIDs := make([]uuid.UUID, 0, len(selected))
	for _, earning := range selected {
		selectedIDs = append(selectedIDs, earning.ID)
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		// Link only. The earnings stay accrued and keep counting toward the
		// accrued sum; the balance deduction is the request's RequestedAmount.
		// Touching status here would deduct the same money twice.
		return tx.Model(&models.EarningRecord{}).
			Where("id IN ? AND status <> ?", selectedIDs, models.EarningStatusPaid).
			Updates(map[string]interface{}{
				"payout_request_id": request.ID,
			}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflictError("a pending payout request already exists for this instructor")
		}
		return nil, err
	}

	RecordAudit("payout_request", request.ID.String(), "payout.requested", instructorID.String(), "instructor", nil, request)
	go notifyAdmins(
		"New Payout Request",
		fmt.Sprintf("<h1>Payout Request %s</h1><p>An instructor requested a payout of %d %s. Please review it in the admin dashboard.</p>",
			request.Reference, request.RequestedAmount, request.Currency),
	)
	go websocket.PushBalanceRefresh(instructorID)

	return &request, nil
}

// selectEarnings greedily accumulates the smallest eligible earnings until
// their sum covers the requested amount or the candidates run out. The
// selection exists purely so auditors can trace which earnings a request
// drew on; the transfer amount is the request's own.
func selectEarnings(candidates []models.EarningRecord, requestedAmount int64) []models.EarningRecord {
	var selected []models.EarningRecord
	var running int64
	for _, earning := range candidates {
		if running >= requestedAmount {
			break
		}
		selected = append(selected, earning)
		running += earning.Amount
	}
	return selected
}

// ReRequestPayout moves a rejected request back to pending. The amount,
// currency, receiver details and linked earning set are untouched; only
// status, timestamps and the rejection metadata change.
func ReRequestPayout(requestID, instructorID uuid.UUID) (*models.PayoutRequest, error) {
	var request models.PayoutRequest
	if err := database.DB.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("payout request %s not found", requestID)
		}
		return nil, err
	}
	if request.InstructorID != instructorID {
		return nil, notFoundError("payout request %s not found", requestID)
	}

	if request.Status != models.PayoutStatusRejected {
		return nil, conflictError("only rejected payout requests can be re-requested; request is %s", request.Status)
	}

	previous := request

	err := database.DB.Model(&request).
		Select("status", "rejection_reason", "processed_at", "requested_at").
		Updates(map[string]interface{}{
			"status":           models.PayoutStatusPending,
			"rejection_reason": nil,
			"processed_at":     nil,
			"requested_at":     clock.Now(),
		}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflictError("a pending payout request already exists for this instructor")
		}
		return nil, err
	}

	request.Status = models.PayoutStatusPending
	request.RejectionReason = nil
	request.ProcessedAt = nil
	request.RequestedAt = clock.Now()

	RecordAudit("payout_request", request.ID.String(), "payout.re_requested", instructorID.String(), "instructor", previous, request)
	go notifyAdmins(
		"Payout Request Re-Submitted",
		fmt.Sprintf("<h1>Payout Request %s</h1><p>A previously rejected payout request of %d %s was re-submitted for review.</p>",
			request.Reference, request.RequestedAmount, request.Currency),
	)

	return &request, nil
}

// CancelPayoutRequest withdraws a pending request inside the cancellation
// window and releases its linked earnings back to accrued.
func CancelPayoutRequest(requestID, instructorID uuid.UUID, reason string) (*models.PayoutRequest, error) {
	settings := config.LoadSettings()

	var request models.PayoutRequest
	if err := database.DB.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("payout request %s not found", requestID)
		}
		return nil, err
	}
	if request.InstructorID != instructorID {
		return nil, notFoundError("payout request %s not found", requestID)
	}

	if request.Status != models.PayoutStatusPending {
		return nil, conflictError("only pending payout requests can be cancelled; request is %s", request.Status)
	}

	window := time.Duration(settings.PayoutCancelWindowHours) * time.Hour
	if clock.Now().Sub(request.CreatedAt) > window {
		return nil, conflictError("payout request is older than the %d-hour cancellation window", settings.PayoutCancelWindowHours)
	}

	previous := request
	now := clock.Now()

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":       models.PayoutStatusCancelled,
			"processed_at": now,
		}
		if strings.TrimSpace(reason) != "" {
			updates["cancel_reason"] = strings.TrimSpace(reason)
		}
		if err := tx.Model(&request).
			Select("status", "processed_at", "cancel_reason").
			Updates(updates).Error; err != nil {
			return err
		}

		return tx.Model(&models.EarningRecord{}).
			Where("payout_request_id = ? AND status <> ?", request.ID, models.EarningStatusPaid).
			Updates(map[string]interface{}{
				"status":            models.EarningStatusAccrued,
				"payout_request_id": nil,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	request.Status = models.PayoutStatusCancelled
	request.ProcessedAt = &now

	RecordAudit("payout_request", request.ID.String(), "payout.cancelled", instructorID.String(), "instructor", previous, request)
	go websocket.PushBalanceRefresh(instructorID)

	return &request, nil
}

// ApprovePayoutRequest marks a pending request approved and attaches the
// proof-of-payment reference. Linked earnings keep their status; approved
// requests are immutable afterwards apart from the proof already attached.
func ApprovePayoutRequest(requestID, adminID uuid.UUID, proofURL string) (*models.PayoutRequest, error) {
	if strings.TrimSpace(proofURL) == "" {
		return nil, validationError("a proof-of-payment attachment is required to approve a payout")
	}

	var request models.PayoutRequest
	if err := database.DB.Preload("Instructor").First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("payout request %s not found", requestID)
		}
		return nil, err
	}

	if request.Status != models.PayoutStatusPending {
		return nil, conflictError("only pending payout requests can be approved; request is %s", request.Status)
	}

	previous := request
	now := clock.Now()

	err := database.DB.Model(&request).
		Select("status", "proof_of_payment_url", "processed_at").
		Updates(map[string]interface{}{
			"status":               models.PayoutStatusApproved,
			"proof_of_payment_url": proofURL,
			"processed_at":         now,
		}).Error
	if err != nil {
		return nil, err
	}

	request.Status = models.PayoutStatusApproved
	request.ProofOfPaymentURL = &proofURL
	request.ProcessedAt = &now

	RecordAudit("payout_request", request.ID.String(), "payout.approved", adminID.String(), "admin", previous, request)

	instructor := request.Instructor
	go notifications.SendEmail(
		instructor.FullName,
		instructor.Email,
		"Your Payout Has Been Processed",
		fmt.Sprintf("<h1>Payout Processed</h1><p>Hello %s,</p><p>Your payout request %s for %d %s has been approved and the transfer was made. The proof of payment is available from your dashboard.</p>",
			instructor.FullName, request.Reference, request.RequestedAmount, request.Currency),
	)
	go websocket.PushPayoutStatus(request.InstructorID, &request)

	return &request, nil
}

const minRejectionReasonLength = 20

// RejectPayoutRequest declines a pending request with an explanation the
// instructor will see. Linked earnings keep their status so a re-request
// carries the identical earning set.
func RejectPayoutRequest(requestID, adminID uuid.UUID, reason string) (*models.PayoutRequest, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) < minRejectionReasonLength {
		return nil, validationError("rejection reason must be at least %d characters", minRejectionReasonLength)
	}

	var request models.PayoutRequest
	if err := database.DB.Preload("Instructor").First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("payout request %s not found", requestID)
		}
		return nil, err
	}

	if request.Status != models.PayoutStatusPending {
		return nil, conflictError("only pending payout requests can be rejected; request is %s", request.Status)
	}

	previous := request
	now := clock.Now()

	err := database.DB.Model(&request).
		Select("status", "rejection_reason", "processed_at").
		Updates(map[string]interface{}{
			"status":           models.PayoutStatusRejected,
			"rejection_reason": reason,
			"processed_at":     now,
		}).Error
	if err != nil {
		return nil, err
	}

	request.Status = models.PayoutStatusRejected
	request.RejectionReason = &reason
	request.ProcessedAt = &now

	RecordAudit("payout_request", request.ID.String(), "payout.rejected", adminID.String(), "admin", previous, request)

	instructor := request.Instructor
	go notifications.SendEmail(
		instructor.FullName,
		instructor.Email,
		"Update on Your Payout Request",
		fmt.Sprintf("<h1>Payout Request Update</h1><p>Hello %s,</p><p>Your payout request %s for %d %s was not approved.</p><p><b>Reason:</b> %s</p><p>You can re-submit the request once the issue is resolved.</p>",
			instructor.FullName, request.Reference, request.RequestedAmount, request.Currency, reason),
	)
	go websocket.PushPayoutStatus(request.InstructorID, &request)

	return &request, nil
}

// ListPayoutRequests pages an instructor's payout requests, newest first.
func ListPayoutRequests(instructorID uuid.UUID, page, limit int) ([]models.PayoutRequest, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := database.DB.Model(&models.PayoutRequest{}).
		Where("instructor_id = ?", instructorID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []models.PayoutRequest
	err := database.DB.
		Where("instructor_id = ?", instructorID).
		Order("requested_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&requests).Error
	return requests, total, err
}

func notifyAdmins(subject, htmlContent string) {
	var admins []models.User
	if err := database.DB.Where("role = ?", "admin").Find(&admins).Error; err != nil {
		log.Printf("🔥 Failed to load admins for notification: %v", err)
		return
	}
	for _, admin := range admins {
		notifications.SendEmail(admin.FullName, admin.Email, subject, htmlContent)
	}
}
