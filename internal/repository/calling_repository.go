package repository

import (
	"time"

	"github.com/jhstephenson/callingtrack/internal/database"
	"github.com/jhstephenson/callingtrack/internal/models"
	"github.com/jhstephenson/callingtrack/internal/workflow"
	"gorm.io/gorm"
)

// GormCallingRepository is a GORM implementation of CallingRepository
type GormCallingRepository struct {
	db *gorm.DB
}

// NewCallingRepository creates a new CallingRepository
func NewCallingRepository(db *gorm.DB) CallingRepository {
	return &GormCallingRepository{db: db}
}

// Transaction runs fn inside a single transaction
func (r *GormCallingRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// FindByID finds a calling by ID with optional preloading
func (r *GormCallingRepository) FindByID(id uint64, preload ...string) (*models.Calling, error) {
	var calling models.Calling
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&calling, id).Error; err != nil {
		return nil, err
	}

	return &calling, nil
}

// List retrieves callings with filtering and pagination
func (r *GormCallingRepository) List(filter CallingFilter) ([]models.Calling, int64, error) {
	var callings []models.Calling

	query := r.db.Model(&models.Calling{})

	if filter.UnitID != nil {
		query = query.Where("callings.unit_id = ?", *filter.UnitID)
	}
	if filter.OrganizationID != nil {
		query = query.Where("callings.organization_id = ?", *filter.OrganizationID)
	}
	if filter.PositionID != nil {
		query = query.Where("callings.position_id = ?", *filter.PositionID)
	}
	if filter.Status != nil {
		query = query.Where("callings.status = ?", *filter.Status)
	}
	if filter.ActiveOnly {
		query = query.Where("callings.is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.
		Order("CASE WHEN callings.date_called IS NULL THEN 1 ELSE 0 END, callings.date_called DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.
		Preload("Unit").
		Preload("Organization").
		Preload("Position").
		Find(&callings).Error; err != nil {
		return nil, 0, err
	}

	return callings, total, nil
}

// ListHistory returns a calling's history oldest-first; ties on changed_at
// fall back to insertion order
func (r *GormCallingRepository) ListHistory(callingID uint64) ([]models.CallingHistory, error) {
	var entries []models.CallingHistory
	err := r.db.
		Where("calling_id = ?", callingID).
		Order("changed_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// RecentHistory returns the newest entries across all callings
func (r *GormCallingRepository) RecentHistory(limit int) ([]models.CallingHistory, error) {
	var entries []models.CallingHistory
	err := r.db.
		Order("changed_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByStatus aggregates calling counts per status, skipping excluded statuses
func (r *GormCallingRepository) CountByStatus(excluded []workflow.Status) ([]StatusCount, error) {
	var counts []StatusCount

	query := r.db.Model(&models.Calling{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("count DESC")

	if len(excluded) > 0 {
		query = query.Where("status NOT IN ?", excluded)
	}

	if err := query.Scan(&counts).Error; err != nil {
		return nil, err
	}

	return counts, nil
}

// CountTotal counts all callings
func (r *GormCallingRepository) CountTotal() (int64, error) {
	var total int64
	err := r.db.Model(&models.Calling{}).Count(&total).Error
	return total, err
}

// UpcomingReleases lists active callings releasing within the window
func (r *GormCallingRepository) UpcomingReleases(from, to time.Time, limit int) ([]models.Calling, error) {
	var callings []models.Calling
	err := r.db.
		Where("date_released IS NOT NULL").
		Where("date_released >= ? AND date_released <= ?", from, to).
		Where("is_active = ?", true).
		Order("date_released ASC").
		Limit(limit).
		Preload("Position").
		Find(&callings).Error
	if err != nil {
		return nil, err
	}
	return callings, nil
}

// RecentCallings lists the most recently called assignments
func (r *GormCallingRepository) RecentCallings(limit int) ([]models.Calling, error) {
	var callings []models.Calling
	err := r.db.
		Order("CASE WHEN date_called IS NULL THEN 1 ELSE 0 END, date_called DESC").
		Limit(limit).
		Preload("Position").
		Preload("Unit").
		Find(&callings).Error
	if err != nil {
		return nil, err
	}
	return callings, nil
}
