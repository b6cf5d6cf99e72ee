package services

import (
	"testing"
	"time"

	"github.com/jhstephenson/callingtrack/internal/workflow"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Summary(t *testing.T) {
	env := setupCallingTestEnv(t)

	// One pending, one approved, one synced to LCR
	_, err := env.service.CreateCalling(ChangeInput{Change: env.newChange()})
	require.NoError(t, err)

	approved := env.newChange()
	approved.PresidencyApproved = testDate(t, "2026-03-01")
	_, err = env.service.CreateCalling(ChangeInput{Change: approved})
	require.NoError(t, err)

	synced := env.newChange()
	lcr := workflow.StatusLCRUpdated
	synced.Status = &lcr
	_, err = env.service.CreateCalling(ChangeInput{Change: synced})
	require.NoError(t, err)

	// Release in 10 days puts a calling in the upcoming window
	releasing := env.newChange()
	name := "Outgoing Leader"
	releasing.Name = &name
	releaseDate := time.Now().AddDate(0, 0, 10).Truncate(24 * time.Hour)
	releasing.DateReleased = &releaseDate
	notes := "term ending"
	releasing.ReleaseNotes = &notes
	_, err = env.service.CreateCalling(ChangeInput{Change: releasing})
	require.NoError(t, err)

	unitRepo := env.service.unitRepo
	dashboard := NewDashboardService(env.service.callingRepo, unitRepo, DashboardConfig{
		ExcludedStatuses: []workflow.Status{workflow.StatusLCRUpdated},
	})

	summary, err := dashboard.Summary(time.Now())
	require.NoError(t, err)

	require.EqualValues(t, 1, summary.TotalUnits)
	require.EqualValues(t, 4, summary.TotalCallings)

	countsByStatus := map[workflow.Status]int64{}
	for _, sc := range summary.StatusCounts {
		countsByStatus[sc.Status] = sc.Count
	}
	require.NotContains(t, countsByStatus, workflow.StatusLCRUpdated)
	require.EqualValues(t, 2, countsByStatus[workflow.StatusPending])
	require.EqualValues(t, 1, countsByStatus[workflow.StatusApproved])

	require.Len(t, summary.UpcomingReleases, 1)
	require.Equal(t, "Outgoing Leader", *summary.UpcomingReleases[0].Name)

	require.NotEmpty(t, summary.RecentActivity)
}

func TestDashboardService_EmptyDatabase(t *testing.T) {
	env := setupCallingTestEnv(t)

	dashboard := NewDashboardService(env.service.callingRepo, env.service.unitRepo, DashboardConfig{})

	summary, err := dashboard.Summary(time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, summary.TotalUnits) // the seeded unit
	require.EqualValues(t, 0, summary.TotalCallings)
	require.Empty(t, summary.StatusCounts)
	require.Empty(t, summary.UpcomingReleases)
}
