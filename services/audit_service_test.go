package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDetectSuspiciousActivity(t *testing.T) {
	instructorID := uuid.New()

	t.Run("no flags below the thresholds", func(t *testing.T) {
		mock := setupMockDB(t)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payout_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payout_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		flags := DetectSuspiciousActivity(instructorID, "203.0.113.7", 24)

		assert.Empty(t, flags)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("flags a fourth request in the window", func(t *testing.T) {
		mock := setupMockDB(t)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payout_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payout_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		flags := DetectSuspiciousActivity(instructorID, "203.0.113.7", 24)

		assert.Equal(t, []string{"high_request_frequency"}, flags)
	})

	t.Run("flags a third request from the same address", func(t *testing.T) {
		mock := setupMockDB(t)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payout_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payout_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		flags := DetectSuspiciousActivity(instructorID, "203.0.113.7", 24)

		assert.Equal(t, []string{"shared_network_origin"}, flags)
	})

	t.Run("skips the address heuristic without a source address", func(t *testing.T) {
		mock := setupMockDB(t)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payout_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		flags := DetectSuspiciousActivity(instructorID, "", 24)

		assert.Empty(t, flags)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
