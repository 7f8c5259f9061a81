package services

import (
	"testing"

	config "github.com/kamau254/course_finance/configs"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResolveActiveSplit(t *testing.T) {
	settings := config.Settings{DefaultInstructorPct: 70, DefaultPlatformPct: 30}

	t.Run("falls back to the platform default", func(t *testing.T) {
		mock := setupMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "revenue_agreements"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		split, err := ResolveActiveSplit(uuid.New(), settings)

		assert.NoError(t, err)
		assert.Equal(t, "default", split.Source)
		assert.Equal(t, 70.0, split.InstructorPct)
		assert.Equal(t, 30.0, split.PlatformPct)
		assert.Nil(t, split.AgreementID)
	})

	t.Run("uses the newest approved active agreement", func(t *testing.T) {
		mock := setupMockDB(t)
		instructorID := uuid.New()
		agreementID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "revenue_agreements"`).
			WillReturnRows(sqlmock.NewRows(
				[]string{"id", "instructor_id", "platform_pct", "instructor_pct", "status", "is_active", "version"}).
				AddRow(agreementID, instructorID, 20.0, 80.0, "approved", true, 3))

		split, err := ResolveActiveSplit(instructorID, settings)

		assert.NoError(t, err)
		assert.Equal(t, "agreement", split.Source)
		assert.Equal(t, 80.0, split.InstructorPct)
		assert.Equal(t, 20.0, split.PlatformPct)
		assert.Equal(t, 3, split.Version)
		if assert.NotNil(t, split.AgreementID) {
			assert.Equal(t, agreementID, *split.AgreementID)
		}
	})
}

func TestCreateAgreementValidation(t *testing.T) {
	t.Run("percentages must sum to 100", func(t *testing.T) {
		setupMockDB(t)

		_, err := CreateAgreement(NewAgreementInput{
			InstructorID:  uuid.New(),
			PlatformPct:   30,
			InstructorPct: 60,
		}, uuid.New().String())

		assert.True(t, IsValidation(err))
	})

	t.Run("a small rounding tolerance is accepted", func(t *testing.T) {
		mock := setupMockDB(t)
		instructorID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "role"}).AddRow(instructorID, "instructor"))
		mock.ExpectQuery(`SELECT \* FROM "revenue_agreements"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectQuery(`INSERT INTO "revenue_agreements"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
		mock.ExpectQuery(`INSERT INTO "audit_logs"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

		agreement, err := CreateAgreement(NewAgreementInput{
			InstructorID:  instructorID,
			PlatformPct:   33.335,
			InstructorPct: 66.665,
		}, uuid.New().String())

		assert.NoError(t, err)
		assert.Equal(t, 1, agreement.Version)
	})
}
