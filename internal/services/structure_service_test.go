package services

import (
	"testing"

	"github.com/jhstephenson/callingtrack/internal/history"
	"github.com/jhstephenson/callingtrack/internal/models"
	"github.com/jhstephenson/callingtrack/internal/repository"
	"github.com/jhstephenson/callingtrack/internal/workflow"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type structureTestEnv struct {
	db             *gorm.DB
	service        *StructureService
	callingService *CallingService
}

func setupStructureTestEnv(t *testing.T) structureTestEnv {
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

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return structureTestEnv{
		db:             db,
		service:        NewStructureService(unitRepo, orgRepo, positionRepo),
		callingService: NewCallingService(callingRepo, unitRepo, orgRepo, positionRepo, history.NewRecorder()),
	}
}

func (env structureTestEnv) seedChain(t *testing.T) (models.Unit, models.Organization, models.Position) {
	t.Helper()

	unit, err := env.service.CreateUnit(UnitInput{Name: "First Ward", UnitType: models.UnitTypeWard})
	require.NoError(t, err)

	org, err := env.service.CreateOrganization(OrganizationInput{UnitID: unit.ID, Name: "Primary"})
	require.NoError(t, err)

	position, err := env.service.CreatePosition(PositionInput{OrganizationID: org.ID, Title: "Teacher"})
	require.NoError(t, err)

	return *unit, *org, *position
}

func TestStructureService_CreateUnitValidation(t *testing.T) {
	env := setupStructureTestEnv(t)

	_, err := env.service.CreateUnit(UnitInput{UnitType: models.UnitTypeWard})
	require.ErrorIs(t, err, ErrNameRequired)

	_, err = env.service.CreateUnit(UnitInput{Name: "Somewhere", UnitType: "DISTRICT"})
	require.ErrorIs(t, err, ErrInvalidUnitType)
}

func TestStructureService_ParentCycleRefused(t *testing.T) {
	env := setupStructureTestEnv(t)

	stake, err := env.service.CreateUnit(UnitInput{Name: "Stake", UnitType: models.UnitTypeStake})
	require.NoError(t, err)

	ward, err := env.service.CreateUnit(UnitInput{
		Name:         "Ward",
		UnitType:     models.UnitTypeWard,
		ParentUnitID: &stake.ID,
	})
	require.NoError(t, err)

	// Stake cannot become a child of its own descendant
	_, err = env.service.UpdateUnit(stake.ID, UnitInput{ParentUnitID: &ward.ID})
	require.ErrorIs(t, err, ErrUnitParentCycle)

	// A unit cannot be its own parent
	_, err = env.service.UpdateUnit(ward.ID, UnitInput{ParentUnitID: &ward.ID})
	require.ErrorIs(t, err, ErrUnitParentCycle)
}

func TestStructureService_ClearParentUnit(t *testing.T) {
	env := setupStructureTestEnv(t)

	stake, err := env.service.CreateUnit(UnitInput{Name: "Stake", UnitType: models.UnitTypeStake})
	require.NoError(t, err)

	ward, err := env.service.CreateUnit(UnitInput{
		Name:         "Ward",
		UnitType:     models.UnitTypeWard,
		ParentUnitID: &stake.ID,
	})
	require.NoError(t, err)

	// An update that does not touch the parent leaves it attached
	updated, err := env.service.UpdateUnit(ward.ID, UnitInput{Name: "Renamed Ward"})
	require.NoError(t, err)
	require.NotNil(t, updated.ParentUnitID)
	require.Equal(t, stake.ID, *updated.ParentUnitID)

	detached, err := env.service.UpdateUnit(ward.ID, UnitInput{ClearParentUnit: true})
	require.NoError(t, err)
	require.Nil(t, detached.ParentUnitID)

	var reloaded models.Unit
	require.NoError(t, env.db.First(&reloaded, ward.ID).Error)
	require.Nil(t, reloaded.ParentUnitID)
}

func TestStructureService_DeleteUnitRefusedWhileAssigned(t *testing.T) {
	env := setupStructureTestEnv(t)
	unit, org, position := env.seedChain(t)

	_, err := env.callingService.CreateCalling(ChangeInput{Change: workflow.ChangeRequest{
		UnitID:         &unit.ID,
		OrganizationID: &org.ID,
		PositionID:     &position.ID,
	}})
	require.NoError(t, err)

	err = env.service.DeleteUnit(unit.ID)
	require.ErrorIs(t, err, ErrUnitInUse)
}

func TestStructureService_DeleteUnitNullsHomeReferences(t *testing.T) {
	env := setupStructureTestEnv(t)
	unit, org, position := env.seedChain(t)

	homeUnit, err := env.service.CreateUnit(UnitInput{Name: "Old Home Ward", UnitType: models.UnitTypeWard})
	require.NoError(t, err)

	calling, err := env.callingService.CreateCalling(ChangeInput{Change: workflow.ChangeRequest{
		UnitID:         &unit.ID,
		OrganizationID: &org.ID,
		PositionID:     &position.ID,
		HomeUnitID:     &homeUnit.ID,
	}})
	require.NoError(t, err)

	// The home unit has no assigned callings, so the delete goes through
	require.NoError(t, env.service.DeleteUnit(homeUnit.ID))

	var reloaded models.Calling
	require.NoError(t, env.db.First(&reloaded, calling.ID).Error)
	require.Nil(t, reloaded.HomeUnitID)
}

func TestStructureService_DeleteOrganizationRefusedWhileReferenced(t *testing.T) {
	env := setupStructureTestEnv(t)
	unit, org, position := env.seedChain(t)

	_, err := env.callingService.CreateCalling(ChangeInput{Change: workflow.ChangeRequest{
		UnitID:         &unit.ID,
		OrganizationID: &org.ID,
		PositionID:     &position.ID,
	}})
	require.NoError(t, err)

	require.ErrorIs(t, env.service.DeleteOrganization(org.ID), ErrOrganizationInUse)
	require.ErrorIs(t, env.service.DeletePosition(position.ID), ErrPositionInUse)
}

func TestStructureService_DeleteUnreferencedStructure(t *testing.T) {
	env := setupStructureTestEnv(t)
	_, org, position := env.seedChain(t)

	require.NoError(t, env.service.DeletePosition(position.ID))
	require.NoError(t, env.service.DeleteOrganization(org.ID))
}

func TestStructureService_OrganizationRequiresExistingUnit(t *testing.T) {
	env := setupStructureTestEnv(t)

	_, err := env.service.CreateOrganization(OrganizationInput{UnitID: 9999, Name: "Primary"})
	require.ErrorIs(t, err, ErrUnitNotFound)
}

func TestStructureService_PositionRequiresExistingOrganization(t *testing.T) {
	env := setupStructureTestEnv(t)

	_, err := env.service.CreatePosition(PositionInput{OrganizationID: 9999, Title: "Teacher"})
	require.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestStructureService_ListUnitsActiveFilter(t *testing.T) {
	env := setupStructureTestEnv(t)

	_, err := env.service.CreateUnit(UnitInput{Name: "Active Ward", UnitType: models.UnitTypeWard})
	require.NoError(t, err)

	inactive := false
	_, err = env.service.CreateUnit(UnitInput{Name: "Closed Ward", UnitType: models.UnitTypeWard, IsActive: &inactive})
	require.NoError(t, err)

	units, total, err := env.service.ListUnits(true, 0, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, units, 1)
	require.Equal(t, "Active Ward", units[0].Name)
}
