package repository

import (
	"github.com/jhstephenson/callingtrack/internal/database"
	"github.com/jhstephenson/callingtrack/internal/models"
	"gorm.io/gorm"
)

// GormUnitRepository is a GORM implementation of UnitRepository
type GormUnitRepository struct {
	db *gorm.DB
}

// NewUnitRepository creates a new UnitRepository
func NewUnitRepository(db *gorm.DB) UnitRepository {
	return &GormUnitRepository{db: db}
}

func (r *GormUnitRepository) Create(unit *models.Unit) error {
	return r.db.Create(unit).Error
}

func (r *GormUnitRepository) FindByID(id uint64, preload ...string) (*models.Unit, error) {
	var unit models.Unit
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&unit, id).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *GormUnitRepository) List(activeOnly bool, page, pageSize int) ([]models.Unit, int64, error) {
	var units []models.Unit

	query := r.db.Model(&models.Unit{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.
		Order("display_order ASC, name ASC").
		Scopes(database.Paginate(page, pageSize))

	if err := listQuery.Find(&units).Error; err != nil {
		return nil, 0, err
	}
	return units, total, nil
}

func (r *GormUnitRepository) Update(unit *models.Unit) error {
	return r.db.Save(unit).Error
}

// Delete removes the unit and nulls home-unit references on callings. The
// caller is responsible for refusing the delete while the unit is still an
// assignment unit.
func (r *GormUnitRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Calling{}).
			Where("home_unit_id = ?", id).
			Update("home_unit_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Unit{}).
			Where("parent_unit_id = ?", id).
			Update("parent_unit_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Unit{}, id).Error
	})
}

func (r *GormUnitRepository) CountAssignedCallings(unitID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Calling{}).Where("unit_id = ?", unitID).Count(&count).Error
	return count, err
}

func (r *GormUnitRepository) CountTotal() (int64, error) {
	var total int64
	err := r.db.Model(&models.Unit{}).Count(&total).Error
	return total, err
}

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

func (r *GormOrganizationRepository) Create(org *models.Organization) error {
	return r.db.Create(org).Error
}

func (r *GormOrganizationRepository) FindByID(id uint64, preload ...string) (*models.Organization, error) {
	var org models.Organization
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *GormOrganizationRepository) List(unitID *uint64, activeOnly bool, page, pageSize int) ([]models.Organization, int64, error) {
	var orgs []models.Organization

	query := r.db.Model(&models.Organization{})
	if unitID != nil {
		query = query.Where("unit_id = ?", *unitID)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.
		Order("display_order ASC, name ASC").
		Preload("Unit").
		Scopes(database.Paginate(page, pageSize))

	if err := listQuery.Find(&orgs).Error; err != nil {
		return nil, 0, err
	}
	return orgs, total, nil
}

func (r *GormOrganizationRepository) Update(org *models.Organization) error {
	return r.db.Save(org).Error
}

func (r *GormOrganizationRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Organization{}, id).Error
}

func (r *GormOrganizationRepository) CountCallings(orgID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Calling{}).Where("organization_id = ?", orgID).Count(&count).Error
	return count, err
}

// GormPositionRepository is a GORM implementation of PositionRepository
type GormPositionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a new PositionRepository
func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &GormPositionRepository{db: db}
}

func (r *GormPositionRepository) Create(position *models.Position) error {
	return r.db.Create(position).Error
}

func (r *GormPositionRepository) FindByID(id uint64, preload ...string) (*models.Position, error) {
	var position models.Position
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&position, id).Error; err != nil {
		return nil, err
	}
	return &position, nil
}

func (r *GormPositionRepository) List(organizationID *uint64, activeOnly bool, page, pageSize int) ([]models.Position, int64, error) {
	var positions []models.Position

	query := r.db.Model(&models.Position{})
	if organizationID != nil {
		query = query.Where("organization_id = ?", *organizationID)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.
		Order("display_order ASC, title ASC").
		Preload("Organization").
		Scopes(database.Paginate(page, pageSize))

	if err := listQuery.Find(&positions).Error; err != nil {
		return nil, 0, err
	}
	return positions, total, nil
}

func (r *GormPositionRepository) Update(position *models.Position) error {
	return r.db.Save(position).Error
}

func (r *GormPositionRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Position{}, id).Error
}

func (r *GormPositionRepository) CountCallings(positionID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Calling{}).Where("position_id = ?", positionID).Count(&count).Error
	return count, err
}
