package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestRecordEarningValidation(t *testing.T) {
	setupMockDB(t)

	_, _, err := RecordEarning(ApprovedPayment{
		PaymentID:    uuid.New(),
		CourseID:     uuid.New(),
		InstructorID: uuid.New(),
		PaidAmount:   0,
	})

	assert.True(t, IsValidation(err))
}

func TestRecordEarningMissingCourse(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "courses"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := RecordEarning(ApprovedPayment{
		PaymentID:    uuid.New(),
		CourseID:     uuid.New(),
		InstructorID: uuid.New(),
		StudentID:    uuid.New(),
		PaidAmount:   100000,
		BaseAmount:   100000,
		Currency:     "USD",
	})

	assert.True(t, IsNotFound(err))
}

func TestRecordEarningReplayedEvent(t *testing.T) {
	mock := setupMockDB(t)

	courseID := uuid.New()
	instructorID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "courses"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "instructor_id", "title", "price", "currency"}).
			AddRow(courseID, instructorID, "Intro to Sculpting", 100000, "USD"))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "role"}).
			AddRow(instructorID, "Jane Doe", "jane@example.com", "instructor"))
	mock.ExpectQuery(`SELECT \* FROM "revenue_agreements"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	// The unique index on (payment_id, side) rejects the replayed pair.
	mock.ExpectQuery(`INSERT INTO "earning_records"`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, _, err := RecordEarning(ApprovedPayment{
		PaymentID:    uuid.New(),
		CourseID:     courseID,
		InstructorID: instructorID,
		StudentID:    uuid.New(),
		PaidAmount:   100000,
		BaseAmount:   100000,
		Currency:     "USD",
	})

	assert.True(t, IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
