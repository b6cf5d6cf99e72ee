package services

import (
	"testing"
	"time"

	"github.com/jhstephenson/callingtrack/internal/history"
	"github.com/jhstephenson/callingtrack/internal/models"
	"github.com/jhstephenson/callingtrack/internal/repository"
	"github.com/jhstephenson/callingtrack/internal/workflow"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type callingTestEnv struct {
	db      *gorm.DB
	service *CallingService

	unit     models.Unit
	org      models.Organization
	position models.Position
}

func setupCallingTestEnv(t *testing.T) callingTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Unit{},
		&models.Organization{},
		&models.Position{},
		&models.Calling{},
		&models.CallingHistory{},
	)
	require.NoError(t, err)

	callingRepo := repository.NewCallingRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	service := NewCallingService(callingRepo, unitRepo, orgRepo, positionRepo, history.NewRecorder())

	unit := models.Unit{Name: "First Ward", UnitType: models.UnitTypeWard, IsActive: true}
	require.NoError(t, db.Create(&unit).Error)

	org := models.Organization{UnitID: unit.ID, Name: "Elders Quorum", IsActive: true}
	require.NoError(t, db.Create(&org).Error)

	position := models.Position{OrganizationID: org.ID, Title: "President", IsLeadership: true, IsActive: true}
	require.NoError(t, db.Create(&position).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return callingTestEnv{
		db:       db,
		service:  service,
		unit:     unit,
		org:      org,
		position: position,
	}
}

func testDate(t *testing.T, s string) *time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return &parsed
}

func (env callingTestEnv) newChange() workflow.ChangeRequest {
	return workflow.ChangeRequest{
		UnitID:         &env.unit.ID,
		OrganizationID: &env.org.ID,
		PositionID:     &env.position.ID,
	}
}

func (env callingTestEnv) historyFor(t *testing.T, callingID uint64) []models.CallingHistory {
	t.Helper()
	var entries []models.CallingHistory
	require.NoError(t, env.db.Where("calling_id = ?", callingID).Order("id ASC").Find(&entries).Error)
	return entries
}

func TestCallingService_CreateRecordsHistory(t *testing.T) {
	env := setupCallingTestEnv(t)

	name := "Jane Doe"
	change := env.newChange()
	change.Name = &name

	actorID := uint64(1)
	calling, err := env.service.CreateCalling(ChangeInput{Change: change, ActorID: &actorID})
	require.NoError(t, err)
	require.Equal(t, workflow.StatusPending, calling.Status)
	require.True(t, calling.IsActive)

	entries := env.historyFor(t, calling.ID)
	require.Len(t, entries, 1)
	require.Equal(t, models.HistoryActionCreated, entries[0].Action)
	require.Equal(t, &actorID, entries[0].ChangedBy)

	state, err := history.UnmarshalSnapshot(entries[0].Snapshot)
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", *state.Name)
}

func TestCallingService_CreateRequiresReferences(t *testing.T) {
	env := setupCallingTestEnv(t)

	_, err := env.service.CreateCalling(ChangeInput{Change: workflow.ChangeRequest{}})
	require.ErrorIs(t, err, ErrReferencesRequired)

	change := env.newChange()
	badOrg := uint64(9999)
	change.OrganizationID = &badOrg
	_, err = env.service.CreateCalling(ChangeInput{Change: change})
	require.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestCallingService_CreateRejectsMismatchedChain(t *testing.T) {
	env := setupCallingTestEnv(t)

	otherUnit := models.Unit{Name: "Second Ward", UnitType: models.UnitTypeWard, IsActive: true}
	require.NoError(t, env.db.Create(&otherUnit).Error)

	change := env.newChange()
	change.UnitID = &otherUnit.ID

	_, err := env.service.CreateCalling(ChangeInput{Change: change})
	require.ErrorIs(t, err, ErrOrganizationNotInUnit)
}

func TestCallingService_UpdateEmitsStatusChanged(t *testing.T) {
	env := setupCallingTestEnv(t)

	calling, err := env.service.CreateCalling(ChangeInput{Change: env.newChange()})
	require.NoError(t, err)

	updated, res, err := env.service.UpdateCalling(calling.ID, ChangeInput{
		Change: workflow.ChangeRequest{
			PresidencyApproved: testDate(t, "2026-03-01"),
		},
	})
	require.NoError(t, err)
	require.Equal(t, workflow.StatusApproved, updated.Status)
	require.True(t, res.StatusChanged)

	entries := env.historyFor(t, calling.ID)
	require.Len(t, entries, 3) // CREATED, UPDATED, STATUS_CHANGED
	require.Equal(t, models.HistoryActionCreated, entries[0].Action)
	require.Equal(t, models.HistoryActionUpdated, entries[1].Action)
	require.Equal(t, models.HistoryActionStatusChanged, entries[2].Action)
	require.Contains(t, entries[2].Notes, "PENDING")
	require.Contains(t, entries[2].Notes, "APPROVED")
}

func TestCallingService_StatusOnlyChangeEmitsOnlyStatusChanged(t *testing.T) {
	env := setupCallingTestEnv(t)

	calling, err := env.service.CreateCalling(ChangeInput{Change: env.newChange()})
	require.NoError(t, err)

	hold := workflow.StatusOnHold
	_, res, err := env.service.UpdateCalling(calling.ID, ChangeInput{
		Change: workflow.ChangeRequest{Status: &hold},
	})
	require.NoError(t, err)
	require.True(t, res.StatusChanged)

	entries := env.historyFor(t, calling.ID)
	require.Len(t, entries, 2) // CREATED, STATUS_CHANGED only
	require.Equal(t, models.HistoryActionStatusChanged, entries[1].Action)
}

func TestCallingService_NoOpUpdateWritesNothing(t *testing.T) {
	env := setupCallingTestEnv(t)

	calling, err := env.service.CreateCalling(ChangeInput{Change: env.newChange()})
	require.NoError(t, err)

	_, res, err := env.service.UpdateCalling(calling.ID, ChangeInput{Change: workflow.ChangeRequest{}})
	require.NoError(t, err)
	require.Empty(t, res.Changes)

	entries := env.historyFor(t, calling.ID)
	require.Len(t, entries, 1) // only CREATED
}

func TestCallingService_UpdateRejectsDateOrderViolation(t *testing.T) {
	env := setupCallingTestEnv(t)

	change := env.newChange()
	change.DateCalled = testDate(t, "2026-03-10")
	calling, err := env.service.CreateCalling(ChangeInput{Change: change})
	require.NoError(t, err)

	_, _, err = env.service.UpdateCalling(calling.ID, ChangeInput{
		Change: workflow.ChangeRequest{DateSustained: testDate(t, "2026-03-01")},
	})

	var orderErr *workflow.DateOrderError
	require.ErrorAs(t, err, &orderErr)

	// Nothing was persisted
	entries := env.historyFor(t, calling.ID)
	require.Len(t, entries, 1)
}

func TestCallingService_ReleaseRequiresNotes(t *testing.T) {
	env := setupCallingTestEnv(t)

	calling, err := env.service.CreateCalling(ChangeInput{Change: env.newChange()})
	require.NoError(t, err)

	_, err = env.service.ReleaseCalling(calling.ID, ReleaseInput{
		DateReleased: *testDate(t, "2026-06-01"),
	})
	require.ErrorIs(t, err, ErrReleaseNotesRequired)
}

func TestCallingService_Release(t *testing.T) {
	env := setupCallingTestEnv(t)

	name := "Jane Doe"
	change := env.newChange()
	change.Name = &name
	change.DateCalled = testDate(t, "2026-01-05")
	calling, err := env.service.CreateCalling(ChangeInput{Change: change})
	require.NoError(t, err)

	released, err := env.service.ReleaseCalling(calling.ID, ReleaseInput{
		DateReleased: *testDate(t, "2026-06-01"),
		ReleaseNotes: "moving to another stake",
	})
	require.NoError(t, err)
	require.NotNil(t, released.DateReleased)
	require.Equal(t, "moving to another stake", released.ReleaseNotes)
}

func TestCallingService_DeleteKeepsHistory(t *testing.T) {
	env := setupCallingTestEnv(t)

	calling, err := env.service.CreateCalling(ChangeInput{Change: env.newChange()})
	require.NoError(t, err)

	actorID := uint64(3)
	require.NoError(t, env.service.DeleteCalling(calling.ID, &actorID))

	_, err = env.service.GetCalling(calling.ID)
	require.ErrorIs(t, err, ErrCallingNotFound)

	entries := env.historyFor(t, calling.ID)
	require.Len(t, entries, 2)
	require.Equal(t, models.HistoryActionDeleted, entries[1].Action)
	require.Equal(t, &actorID, entries[1].ChangedBy)
}

func TestCallingService_ListHistoryOrder(t *testing.T) {
	env := setupCallingTestEnv(t)

	calling, err := env.service.CreateCalling(ChangeInput{Change: env.newChange()})
	require.NoError(t, err)

	notes := "first edit"
	_, _, err = env.service.UpdateCalling(calling.ID, ChangeInput{
		Change: workflow.ChangeRequest{Notes: &notes},
	})
	require.NoError(t, err)

	notes2 := "second edit"
	_, _, err = env.service.UpdateCalling(calling.ID, ChangeInput{
		Change: workflow.ChangeRequest{Notes: &notes2},
	})
	require.NoError(t, err)

	entries, err := env.service.ListHistory(calling.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		require.False(t, entries[i].ChangedAt.Before(entries[i-1].ChangedAt))
	}
}

func TestCallingService_ListHistoryUnknownCalling(t *testing.T) {
	env := setupCallingTestEnv(t)

	_, err := env.service.ListHistory(9999)
	require.ErrorIs(t, err, ErrCallingNotFound)
}

func TestCallingService_ListFiltersByStatus(t *testing.T) {
	env := setupCallingTestEnv(t)

	_, err := env.service.CreateCalling(ChangeInput{Change: env.newChange()})
	require.NoError(t, err)

	change := env.newChange()
	change.PresidencyApproved = testDate(t, "2026-03-01")
	_, err = env.service.CreateCalling(ChangeInput{Change: change})
	require.NoError(t, err)

	approved := workflow.StatusApproved
	callings, total, err := env.service.ListCallings(repository.CallingFilter{Status: &approved})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, callings, 1)
	require.Equal(t, workflow.StatusApproved, callings[0].Status)
}
