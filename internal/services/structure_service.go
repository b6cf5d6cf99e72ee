package services

import (
	"errors"
	"fmt"

	"github.com/jhstephenson/callingtrack/internal/models"
	"github.com/jhstephenson/callingtrack/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrUnitParentCycle    = errors.New("a unit cannot be its own ancestor")
	ErrUnitInUse          = errors.New("unit is referenced by existing callings")
	ErrOrganizationInUse  = errors.New("organization is referenced by existing callings")
	ErrPositionInUse      = errors.New("position is referenced by existing callings")
	ErrNameRequired       = errors.New("name is required")
	ErrTitleRequired      = errors.New("title is required")
	ErrInvalidUnitType    = errors.New("invalid unit type")
	ErrDuplicatePosition  = errors.New("a position with this title already exists in the organization")
)

// StructureService manages the unit / organization / position hierarchy.
// Deletes enforce the referential protection the callings depend on.
type StructureService struct {
	unitRepo     repository.UnitRepository
	orgRepo      repository.OrganizationRepository
	positionRepo repository.PositionRepository
}

// NewStructureService creates a new StructureService
func NewStructureService(
	unitRepo repository.UnitRepository,
	orgRepo repository.OrganizationRepository,
	positionRepo repository.PositionRepository,
) *StructureService {
	return &StructureService{
		unitRepo:     unitRepo,
		orgRepo:      orgRepo,
		positionRepo: positionRepo,
	}
}

// Units

// UnitInput represents input for creating or updating a unit. ClearParentUnit
// detaches the unit from its parent; a nil ParentUnitID leaves it unchanged.
type UnitInput struct {
	Name            string
	UnitType        models.UnitType
	ParentUnitID    *uint64
	ClearParentUnit bool
	DisplayOrder    int
	IsActive        *bool
}

func (s *StructureService) ListUnits(activeOnly bool, page, pageSize int) ([]models.Unit, int64, error) {
	return s.unitRepo.List(activeOnly, page, pageSize)
}

func (s *StructureService) GetUnit(id uint64) (*models.Unit, error) {
	unit, err := s.unitRepo.FindByID(id, "ParentUnit", "Organizations")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, fmt.Errorf("failed to find unit: %w", err)
	}
	return unit, nil
}

func (s *StructureService) CreateUnit(input UnitInput) (*models.Unit, error) {
	if input.Name == "" {
		return nil, ErrNameRequired
	}
	if !validUnitType(input.UnitType) {
		return nil, ErrInvalidUnitType
	}

	unit := &models.Unit{
		Name:         input.Name,
		UnitType:     input.UnitType,
		ParentUnitID: input.ParentUnitID,
		DisplayOrder: input.DisplayOrder,
		IsActive:     true,
	}
	if input.IsActive != nil {
		unit.IsActive = *input.IsActive
	}

	if input.ParentUnitID != nil {
		if err := s.checkParentChain(0, *input.ParentUnitID); err != nil {
			return nil, err
		}
	}

	if err := s.unitRepo.Create(unit); err != nil {
		return nil, fmt.Errorf("failed to create unit: %w", err)
	}
	return unit, nil
}

func (s *StructureService) UpdateUnit(id uint64, input UnitInput) (*models.Unit, error) {
	unit, err := s.unitRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, fmt.Errorf("failed to find unit: %w", err)
	}

	if input.Name != "" {
		unit.Name = input.Name
	}
	if input.UnitType != "" {
		if !validUnitType(input.UnitType) {
			return nil, ErrInvalidUnitType
		}
		unit.UnitType = input.UnitType
	}
	if input.ClearParentUnit {
		unit.ParentUnitID = nil
	} else if input.ParentUnitID != nil {
		if err := s.checkParentChain(id, *input.ParentUnitID); err != nil {
			return nil, err
		}
		unit.ParentUnitID = input.ParentUnitID
	}
	unit.DisplayOrder = input.DisplayOrder
	if input.IsActive != nil {
		unit.IsActive = *input.IsActive
	}

	if err := s.unitRepo.Update(unit); err != nil {
		return nil, fmt.Errorf("failed to update unit: %w", err)
	}
	return unit, nil
}

// DeleteUnit refuses while the unit is still an assignment unit; home-unit
// references are nulled by the repository.
func (s *StructureService) DeleteUnit(id uint64) error {
	if _, err := s.unitRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnitNotFound
		}
		return fmt.Errorf("failed to find unit: %w", err)
	}

	count, err := s.unitRepo.CountAssignedCallings(id)
	if err != nil {
		return fmt.Errorf("failed to check unit references: %w", err)
	}
	if count > 0 {
		return ErrUnitInUse
	}

	if err := s.unitRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete unit: %w", err)
	}
	return nil
}

// checkParentChain walks up from parentID and fails if unitID appears,
// which would make the unit its own ancestor.
func (s *StructureService) checkParentChain(unitID, parentID uint64) error {
	seen := make(map[uint64]struct{})
	current := parentID
	for {
		if current == unitID {
			return ErrUnitParentCycle
		}
		if _, ok := seen[current]; ok {
			// Existing cycle in the data; refuse to extend it
			return ErrUnitParentCycle
		}
		seen[current] = struct{}{}

		parent, err := s.unitRepo.FindByID(current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnitNotFound
			}
			return fmt.Errorf("failed to walk parent chain: %w", err)
		}
		if parent.ParentUnitID == nil {
			return nil
		}
		current = *parent.ParentUnitID
	}
}

func validUnitType(t models.UnitType) bool {
	switch t {
	case models.UnitTypeWard, models.UnitTypeBranch, models.UnitTypeStake:
		return true
	}
	return false
}

// Organizations

// OrganizationInput represents input for creating or updating an organization
type OrganizationInput struct {
	UnitID       uint64
	Name         string
	Leader       string
	DisplayOrder int
	IsActive     *bool
}

func (s *StructureService) ListOrganizations(unitID *uint64, activeOnly bool, page, pageSize int) ([]models.Organization, int64, error) {
	return s.orgRepo.List(unitID, activeOnly, page, pageSize)
}

func (s *StructureService) GetOrganization(id uint64) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(id, "Unit", "Positions")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return org, nil
}

func (s *StructureService) CreateOrganization(input OrganizationInput) (*models.Organization, error) {
	if input.Name == "" {
		return nil, ErrNameRequired
	}
	if _, err := s.unitRepo.FindByID(input.UnitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, fmt.Errorf("failed to verify unit: %w", err)
	}

	org := &models.Organization{
		UnitID:       input.UnitID,
		Name:         input.Name,
		Leader:       input.Leader,
		DisplayOrder: input.DisplayOrder,
		IsActive:     true,
	}
	if input.IsActive != nil {
		org.IsActive = *input.IsActive
	}

	if err := s.orgRepo.Create(org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	return org, nil
}

func (s *StructureService) UpdateOrganization(id uint64, input OrganizationInput) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	if input.Name != "" {
		org.Name = input.Name
	}
	if input.UnitID != 0 && input.UnitID != org.UnitID {
		if _, err := s.unitRepo.FindByID(input.UnitID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnitNotFound
			}
			return nil, fmt.Errorf("failed to verify unit: %w", err)
		}
		org.UnitID = input.UnitID
	}
	org.Leader = input.Leader
	org.DisplayOrder = input.DisplayOrder
	if input.IsActive != nil {
		org.IsActive = *input.IsActive
	}

	if err := s.orgRepo.Update(org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}
	return org, nil
}

func (s *StructureService) DeleteOrganization(id uint64) error {
	if _, err := s.orgRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrganizationNotFound
		}
		return fmt.Errorf("failed to find organization: %w", err)
	}

	count, err := s.orgRepo.CountCallings(id)
	if err != nil {
		return fmt.Errorf("failed to check organization references: %w", err)
	}
	if count > 0 {
		return ErrOrganizationInUse
	}

	if err := s.orgRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	return nil
}

// Positions

// PositionInput represents input for creating or updating a position
type PositionInput struct {
	OrganizationID       uint64
	Title                string
	IsLeadership         *bool
	RequiresSettingApart *bool
	DisplayOrder         int
	IsActive             *bool
}

func (s *StructureService) ListPositions(organizationID *uint64, activeOnly bool, page, pageSize int) ([]models.Position, int64, error) {
	return s.positionRepo.List(organizationID, activeOnly, page, pageSize)
}

func (s *StructureService) GetPosition(id uint64) (*models.Position, error) {
	position, err := s.positionRepo.FindByID(id, "Organization")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPositionNotFound
		}
		return nil, fmt.Errorf("failed to find position: %w", err)
	}
	return position, nil
}

func (s *StructureService) CreatePosition(input PositionInput) (*models.Position, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if _, err := s.orgRepo.FindByID(input.OrganizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to verify organization: %w", err)
	}

	position := &models.Position{
		OrganizationID: input.OrganizationID,
		Title:          input.Title,
		DisplayOrder:   input.DisplayOrder,
		IsActive:       true,
	}
	if input.IsLeadership != nil {
		position.IsLeadership = *input.IsLeadership
	}
	if input.RequiresSettingApart != nil {
		position.RequiresSettingApart = *input.RequiresSettingApart
	}
	if input.IsActive != nil {
		position.IsActive = *input.IsActive
	}

	if err := s.positionRepo.Create(position); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicatePosition
		}
		return nil, fmt.Errorf("failed to create position: %w", err)
	}
	return position, nil
}

func (s *StructureService) UpdatePosition(id uint64, input PositionInput) (*models.Position, error) {
	position, err := s.positionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPositionNotFound
		}
		return nil, fmt.Errorf("failed to find position: %w", err)
	}

	if input.Title != "" {
		position.Title = input.Title
	}
	if input.IsLeadership != nil {
		position.IsLeadership = *input.IsLeadership
	}
	if input.RequiresSettingApart != nil {
		position.RequiresSettingApart = *input.RequiresSettingApart
	}
	position.DisplayOrder = input.DisplayOrder
	if input.IsActive != nil {
		position.IsActive = *input.IsActive
	}

	if err := s.positionRepo.Update(position); err != nil {
		return nil, fmt.Errorf("failed to update position: %w", err)
	}
	return position, nil
}

func (s *StructureService) DeletePosition(id uint64) error {
	if _, err := s.positionRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPositionNotFound
		}
		return fmt.Errorf("failed to find position: %w", err)
	}

	count, err := s.positionRepo.CountCallings(id)
	if err != nil {
		return fmt.Errorf("failed to check position references: %w", err)
	}
	if count > 0 {
		return ErrPositionInUse
	}

	if err := s.positionRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	return nil
}
