package services

import (
	"testing"
	"time"

	"github.com/kamau254/course_finance/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func useFakeClock(t *testing.T, at time.Time) {
	t.Helper()
	previous := clock
	clock = clockwork.NewFakeClockAt(at)
	t.Cleanup(func() { clock = previous })
}

func TestSelectEarnings(t *testing.T) {
	earning := func(amount int64) models.EarningRecord {
		return models.EarningRecord{ID: uuid.New(), Amount: amount}
	}

	t.Run("accumulates smallest first until the amount is covered", func(t *testing.T) {
		candidates := []models.EarningRecord{earning(100), earning(200), earning(500), earning(900)}

		selected := selectEarnings(candidates, 600)

		assert.Len(t, selected, 3)
		assert.Equal(t, int64(100), selected[0].Amount)
		assert.Equal(t, int64(200), selected[1].Amount)
		assert.Equal(t, int64(500), selected[2].Amount)
	})

	t.Run("takes everything when the candidates fall short", func(t *testing.T) {
		candidates := []models.EarningRecord{earning(100), earning(200)}

		selected := selectEarnings(candidates, 1000)

		assert.Len(t, selected, 2)
	})

	t.Run("a single covering earning is enough", func(t *testing.T) {
		candidates := []models.EarningRecord{earning(5000)}

		selected := selectEarnings(candidates, 600)

		assert.Len(t, selected, 1)
	})
}

func TestCreatePayoutRequestGuards(t *testing.T) {
	instructorID := uuid.New()

	t.Run("unsupported currency", func(t *testing.T) {
		setupMockDB(t)

		_, err := CreatePayoutRequest(instructorID, CreatePayoutInput{
			PaymentMethod: "bank_transfer",
			Currency:      "XTS",
		})

		assert.True(t, IsValidation(err))
	})

	t.Run("one pending request per instructor", func(t *testing.T) {
		mock := setupMockDB(t)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payout_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		_, err := CreatePayoutRequest(instructorID, CreatePayoutInput{
			PaymentMethod: "bank_transfer",
			Currency:      "USD",
		})

		assert.True(t, IsConflict(err))
	})

	t.Run("an outstanding rejection must be re-requested", func(t *testing.T) {
		mock := setupMockDB(t)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payout_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payout_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		_, err := CreatePayoutRequest(instructorID, CreatePayoutInput{
			PaymentMethod: "bank_transfer",
			Currency:      "USD",
		})

		assert.True(t, IsConflict(err))
	})

	t.Run("no eligible earnings", func(t *testing.T) {
		mock := setupMockDB(t)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payout_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payout_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT \* FROM "earning_records"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := CreatePayoutRequest(instructorID, CreatePayoutInput{
			PaymentMethod: "bank_transfer",
			Currency:      "USD",
		})

		assert.True(t, IsConflict(err))
	})
}

func TestCreatePayoutRequestLinksWithoutStatusChange(t *testing.T) {
	instructorID := uuid.New()
	earningID := uuid.New()
	requestID := uuid.New()
	amount := int64(50000)

	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "payout_requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "payout_requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "earning_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "instructor_id", "side", "amount", "status"}).
			AddRow(earningID, instructorID, models.EarningSideInstructor, 80000, models.EarningStatusAccrued))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "earning_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(80000))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(requested_amount\), 0\) FROM "payout_requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "payout_requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "payout_requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "payout_requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "payout_requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(requestID))
	// The selected earnings are linked only. A SET that also rewrote status
	// would pull them out of the accrued sum on top of the requested-amount
	// deduction and the available balance would drop twice.
	mock.ExpectExec(`UPDATE "earning_records" SET "payout_request_id"=\$1,"updated_at"=\$2 WHERE id IN \(\$3\) AND status <> \$4`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	request, err := CreatePayoutRequest(instructorID, CreatePayoutInput{
		PaymentMethod:   "bank_transfer",
		ReceiverName:    "Jane Doe",
		ReceiverAccount: "0011223344",
		Currency:        "USD",
		RequestIP:       "203.0.113.7",
		RequestedAmount: &amount,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPending, request.Status)
	assert.Equal(t, amount, request.RequestedAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReRequestPayout(t *testing.T) {
	instructorID := uuid.New()
	requestID := uuid.New()

	t.Run("only rejected requests can be re-requested", func(t *testing.T) {
		mock := setupMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "payout_requests"`).
			WillReturnRows(payoutRequestRows(requestID, instructorID, models.PayoutStatusPending, time.Now()))

		_, err := ReRequestPayout(requestID, instructorID)

		assert.True(t, IsConflict(err))
	})

	t.Run("re-opening keeps the amount and clears only rejection metadata", func(t *testing.T) {
		now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
		useFakeClock(t, now)
		mock := setupMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "payout_requests"`).
			WillReturnRows(payoutRequestRows(requestID, instructorID, models.PayoutStatusRejected, now.Add(-48*time.Hour)))
		mock.ExpectExec(`UPDATE "payout_requests" SET "processed_at"=\$1,"rejection_reason"=\$2,"requested_at"=\$3,"status"=\$4`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "audit_logs"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

		request, err := ReRequestPayout(requestID, instructorID)

		assert.NoError(t, err)
		assert.Equal(t, models.PayoutStatusPending, request.Status)
		assert.Equal(t, int64(50000), request.RequestedAmount)
		assert.Nil(t, request.RejectionReason)
		assert.Nil(t, request.ProcessedAt)
		assert.Equal(t, now, request.RequestedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("another instructor's request stays invisible", func(t *testing.T) {
		mock := setupMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "payout_requests"`).
			WillReturnRows(payoutRequestRows(requestID, uuid.New(), models.PayoutStatusRejected, time.Now()))

		_, err := ReRequestPayout(requestID, instructorID)

		assert.True(t, IsNotFound(err))
	})
}

func TestCancelPayoutRequestWindow(t *testing.T) {
	instructorID := uuid.New()
	requestID := uuid.New()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("rejects a cancellation outside the window", func(t *testing.T) {
		useFakeClock(t, now)
		mock := setupMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "payout_requests"`).
			WillReturnRows(payoutRequestRows(requestID, instructorID, models.PayoutStatusPending, now.Add(-30*time.Hour)))

		_, err := CancelPayoutRequest(requestID, instructorID, "changed my mind")

		assert.True(t, IsConflict(err))
	})

	t.Run("cancelling releases the linked earnings back to accrued", func(t *testing.T) {
		useFakeClock(t, now)
		mock := setupMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "payout_requests"`).
			WillReturnRows(payoutRequestRows(requestID, instructorID, models.PayoutStatusPending, now.Add(-time.Hour)))
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "payout_requests" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "earning_records" SET "payout_request_id"=\$1,"status"=\$2,"updated_at"=\$3 WHERE payout_request_id = \$4 AND status <> \$5`).
			WithArgs(nil, models.EarningStatusAccrued, sqlmock.AnyArg(), requestID, models.EarningStatusPaid).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()
		mock.ExpectQuery(`INSERT INTO "audit_logs"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

		request, err := CancelPayoutRequest(requestID, instructorID, "entered the wrong account")

		assert.NoError(t, err)
		assert.Equal(t, models.PayoutStatusCancelled, request.Status)
		if assert.NotNil(t, request.ProcessedAt) {
			assert.Equal(t, now, *request.ProcessedAt)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("only pending requests can be cancelled", func(t *testing.T) {
		useFakeClock(t, now)
		mock := setupMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "payout_requests"`).
			WillReturnRows(payoutRequestRows(requestID, instructorID, models.PayoutStatusApproved, now.Add(-time.Hour)))

		_, err := CancelPayoutRequest(requestID, instructorID, "")

		assert.True(t, IsConflict(err))
	})
}

func TestRejectPayoutRequestReason(t *testing.T) {
	setupMockDB(t)

	_, err := RejectPayoutRequest(uuid.New(), uuid.New(), "too short")

	assert.True(t, IsValidation(err))
}

func payoutRequestRows(requestID, instructorID uuid.UUID, status string, createdAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(
		[]string{"id", "reference", "instructor_id", "requested_amount", "currency", "status", "created_at", "requested_at"}).
		AddRow(requestID, "PO-TESTREF1", instructorID, 50000, "USD", status, createdAt, createdAt)
}
