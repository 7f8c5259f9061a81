package services

import (
	"testing"

	"github.com/kamau254/course_finance/database"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB swaps the package-wide connection for a sqlmock-backed one and
// restores it when the test finishes.
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
		// Background goroutines started by the code under test may outlive
		// the test; leave the (closed) mock handle in place rather than a
		// nil one so they fail with a driver error instead of panicking.
		if previous != nil {
			database.DB = previous
		}
		db.Close()
	})

	return mock
}
