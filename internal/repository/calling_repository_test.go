package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jhstephenson/callingtrack/internal/workflow"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db, mock
}

func TestCountByStatus_ExcludesStatuses(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCallingRepository(db)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count FROM "callings" WHERE status NOT IN \(\$1\).*GROUP BY`).
		WithArgs("LCR_UPDATED").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("PENDING", 5).
			AddRow("APPROVED", 2))

	counts, err := repo.CountByStatus([]workflow.Status{workflow.StatusLCRUpdated})
	require.NoError(t, err)
	require.Len(t, counts, 2)
	require.Equal(t, workflow.StatusPending, counts[0].Status)
	require.EqualValues(t, 5, counts[0].Count)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByStatus_NoExclusions(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCallingRepository(db)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count FROM "callings" WHERE .*GROUP BY`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("PENDING", 1))

	counts, err := repo.CountByStatus(nil)
	require.NoError(t, err)
	require.Len(t, counts, 1)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpcomingReleases_WindowBounds(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCallingRepository(db)

	from := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 30)

	mock.ExpectQuery(`SELECT \* FROM "callings" WHERE date_released IS NOT NULL AND \(date_released >= \$1 AND date_released <= \$2\)`).
		WithArgs(from, to, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "unit_id", "organization_id", "position_id"}))

	callings, err := repo.UpcomingReleases(from, to, 10)
	require.NoError(t, err)
	require.Empty(t, callings)
}
