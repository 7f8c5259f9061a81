package handlers

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kamau254/course_finance/database"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	previous := database.DB
	database.DB = gormDB
	t.Cleanup(func() {
		database.DB = previous
		db.Close()
	})

	return mock
}

func webhookBody(courseID, instructorID uuid.UUID) string {
	return fmt.Sprintf(`{
		"payment_id": %q,
		"course_id": %q,
		"instructor_id": %q,
		"student_id": %q,
		"paid_amount": 80000,
		"currency": "USD",
		"base_amount": 100000,
		"wallet_discount_amount": 20000,
		"allows_discount_absorption": true,
		"payment_method": "card"
	}`, uuid.New(), courseID, instructorID, uuid.New())
}

func TestHandlePaymentApprovedAbortsBeforeWrites(t *testing.T) {
	app := fiber.New()
	app.Post("/webhook", HandlePaymentApproved)

	t.Run("unknown course leaves nothing behind", func(t *testing.T) {
		mock := setupMockDB(t)
		mock.ExpectQuery(`SELECT "id" FROM "courses"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		req := httptest.NewRequest("POST", "/webhook", strings.NewReader(webhookBody(uuid.New(), uuid.New())))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		// No further expectations: a payment INSERT would trip the mock.
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown instructor leaves nothing behind", func(t *testing.T) {
		mock := setupMockDB(t)
		courseID := uuid.New()
		mock.ExpectQuery(`SELECT "id" FROM "courses"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(courseID))
		mock.ExpectQuery(`SELECT "id" FROM "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		req := httptest.NewRequest("POST", "/webhook", strings.NewReader(webhookBody(courseID, uuid.New())))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
