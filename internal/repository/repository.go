package repository

import (
	"time"

	"github.com/jhstephenson/callingtrack/internal/models"
	"github.com/jhstephenson/callingtrack/internal/workflow"
	"gorm.io/gorm"
)

// CallingFilter holds filtering options for listing callings
type CallingFilter struct {
	UnitID         *uint64
	OrganizationID *uint64
	PositionID     *uint64
	Status         *workflow.Status
	ActiveOnly     bool
	Page           int
	PageSize       int
}

// StatusCount is one row of the dashboard's group-by-status aggregation
type StatusCount struct {
	Status workflow.Status `json:"status"`
	Count  int64           `json:"count"`
}

// CallingRepository defines the interface for calling and history data access.
// History rows are append-only: nothing here updates or deletes an entry.
type CallingRepository interface {
	// Transaction runs fn inside a single transaction; the calling save and
	// its history append go through this so they commit or roll back together
	Transaction(fn func(tx *gorm.DB) error) error

	// FindByID finds a calling by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Calling, error)

	// List retrieves callings with filtering and pagination
	List(filter CallingFilter) ([]models.Calling, int64, error)

	// ListHistory returns a calling's history in non-decreasing timestamp
	// order, ties broken by insertion sequence
	ListHistory(callingID uint64) ([]models.CallingHistory, error)

	// RecentHistory returns the newest history entries across all callings
	RecentHistory(limit int) ([]models.CallingHistory, error)

	// CountByStatus aggregates calling counts per status, skipping excluded
	// statuses
	CountByStatus(excluded []workflow.Status) ([]StatusCount, error)

	// CountTotal counts all callings
	CountTotal() (int64, error)

	// UpcomingReleases lists active callings whose release date falls in the
	// given window
	UpcomingReleases(from, to time.Time, limit int) ([]models.Calling, error)

	// RecentCallings lists the most recently called assignments
	RecentCallings(limit int) ([]models.Calling, error)
}

// UnitRepository defines the interface for unit data access
type UnitRepository interface {
	Create(unit *models.Unit) error
	FindByID(id uint64, preload ...string) (*models.Unit, error)
	List(activeOnly bool, page, pageSize int) ([]models.Unit, int64, error)
	Update(unit *models.Unit) error

	// Delete removes the unit and nulls home-unit references on callings in
	// the same transaction
	Delete(id uint64) error

	// CountAssignedCallings counts callings whose assignment unit is this unit
	CountAssignedCallings(unitID uint64) (int64, error)

	CountTotal() (int64, error)
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	Create(org *models.Organization) error
	FindByID(id uint64, preload ...string) (*models.Organization, error)
	List(unitID *uint64, activeOnly bool, page, pageSize int) ([]models.Organization, int64, error)
	Update(org *models.Organization) error
	Delete(id uint64) error

	// CountCallings counts callings referencing the organization
	CountCallings(orgID uint64) (int64, error)
}

// PositionRepository defines the interface for position data access
type PositionRepository interface {
	Create(position *models.Position) error
	FindByID(id uint64, preload ...string) (*models.Position, error)
	List(organizationID *uint64, activeOnly bool, page, pageSize int) ([]models.Position, int64, error)
	Update(position *models.Position) error
	Delete(id uint64) error

	// CountCallings counts callings referencing the position
	CountCallings(positionID uint64) (int64, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uint64) (*models.User, error)
	FindByUsername(username string) (*models.User, error)

	// SetGroups replaces the user's group memberships
	SetGroups(userID uint64, groupNames []string) error

	// EnsureGroups creates any of the named groups that do not exist yet
	EnsureGroups(names []string) error
}
