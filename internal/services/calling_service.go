package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/jhstephenson/callingtrack/internal/history"
	"github.com/jhstephenson/callingtrack/internal/models"
	"github.com/jhstephenson/callingtrack/internal/repository"
	"github.com/jhstephenson/callingtrack/internal/workflow"
	"gorm.io/gorm"
)

var (
	ErrCallingNotFound       = errors.New("calling not found")
	ErrUnitNotFound          = errors.New("unit not found")
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrPositionNotFound      = errors.New("position not found")
	ErrOrganizationNotInUnit = errors.New("organization does not belong to the selected unit")
	ErrPositionNotInOrg      = errors.New("position does not belong to the selected organization")
	ErrReleaseNotesRequired  = errors.New("release notes are required")
	ErrReferencesRequired    = errors.New("unit, organization and position are required")
	ErrPersistenceConflict   = errors.New("the change could not be committed")
)

// CallingService runs the workflow validator against persisted state and keeps
// the calling row and its history entries in one transaction.
type CallingService struct {
	callingRepo  repository.CallingRepository
	unitRepo     repository.UnitRepository
	orgRepo      repository.OrganizationRepository
	positionRepo repository.PositionRepository
	recorder     *history.Recorder
}

// NewCallingService creates a new CallingService
func NewCallingService(
	callingRepo repository.CallingRepository,
	unitRepo repository.UnitRepository,
	orgRepo repository.OrganizationRepository,
	positionRepo repository.PositionRepository,
	recorder *history.Recorder,
) *CallingService {
	return &CallingService{
		callingRepo:  callingRepo,
		unitRepo:     unitRepo,
		orgRepo:      orgRepo,
		positionRepo: positionRepo,
		recorder:     recorder,
	}
}

// ChangeInput carries a proposed change and the acting user.
type ChangeInput struct {
	Change  workflow.ChangeRequest
	ActorID *uint64
	Note    string
}

// ListCallings returns callings matching the filter plus per-status counts for
// the list header.
func (s *CallingService) ListCallings(filter repository.CallingFilter) ([]models.Calling, int64, error) {
	callings, total, err := s.callingRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list callings: %w", err)
	}
	return callings, total, nil
}

// StatusCounts aggregates calling counts per status for the list header
func (s *CallingService) StatusCounts() ([]repository.StatusCount, error) {
	counts, err := s.callingRepo.CountByStatus(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count callings by status: %w", err)
	}
	return counts, nil
}

// GetCalling returns a calling with related data
func (s *CallingService) GetCalling(id uint64) (*models.Calling, error) {
	calling, err := s.callingRepo.FindByID(id, "Unit", "Organization", "Position", "HomeUnit")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCallingNotFound
		}
		return nil, fmt.Errorf("failed to find calling: %w", err)
	}
	return calling, nil
}

// CreateCalling validates the proposed state, persists it, and records the
// CREATED history entry in the same transaction.
func (s *CallingService) CreateCalling(input ChangeInput) (*models.Calling, error) {
	if input.Change.UnitID == nil || input.Change.OrganizationID == nil || input.Change.PositionID == nil {
		return nil, ErrReferencesRequired
	}

	// New callings start active unless the caller says otherwise
	seed := workflow.CallingState{IsActive: true}

	res, err := workflow.ProposeChange(seed, input.Change)
	if err != nil {
		return nil, err
	}

	if err := s.validateReferences(res.Effective); err != nil {
		return nil, err
	}

	calling := &models.Calling{}
	calling.ApplyState(res.Effective)

	err = s.callingRepo.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(calling).Error; err != nil {
			return err
		}
		_, err := s.recorder.Record(tx, calling.ID, models.HistoryActionCreated, input.ActorID, res.Effective, input.Note)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceConflict, err)
	}

	return s.GetCalling(calling.ID)
}

// UpdateCalling applies a proposed change through the workflow validator. A
// STATUS_CHANGED entry is recorded whenever the derived status differs from
// the persisted one, in addition to the UPDATED entry when other fields moved.
func (s *CallingService) UpdateCalling(id uint64, input ChangeInput) (*models.Calling, *workflow.Resolution, error) {
	calling, err := s.callingRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCallingNotFound
		}
		return nil, nil, fmt.Errorf("failed to find calling: %w", err)
	}

	res, err := workflow.ProposeChange(calling.State(), input.Change)
	if err != nil {
		return nil, nil, err
	}

	if err := s.validateReferences(res.Effective); err != nil {
		return nil, nil, err
	}

	if len(res.Changes) == 0 {
		return calling, res, nil
	}

	calling.ApplyState(res.Effective)

	err = s.callingRepo.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(calling).Error; err != nil {
			return err
		}

		if s.hasNonStatusChanges(res.Changes) {
			if _, err := s.recorder.Record(tx, calling.ID, models.HistoryActionUpdated, input.ActorID, res.Effective, input.Note); err != nil {
				return err
			}
		}
		if res.StatusChanged {
			note := fmt.Sprintf("Status changed from %s to %s", res.PreviousStatus, res.Effective.Status)
			if _, err := s.recorder.Record(tx, calling.ID, models.HistoryActionStatusChanged, input.ActorID, res.Effective, note); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrPersistenceConflict, err)
	}

	reloaded, err := s.GetCalling(calling.ID)
	if err != nil {
		return nil, nil, err
	}
	return reloaded, res, nil
}

// ReleaseInput carries the fields of a release action.
type ReleaseInput struct {
	DateReleased time.Time
	ReleaseNotes string
	ActorID      *uint64
}

// ReleaseCalling records the release date and notes for a calling.
func (s *CallingService) ReleaseCalling(id uint64, input ReleaseInput) (*models.Calling, error) {
	if input.ReleaseNotes == "" {
		return nil, ErrReleaseNotesRequired
	}

	change := workflow.ChangeRequest{
		DateReleased: &input.DateReleased,
		ReleaseNotes: &input.ReleaseNotes,
	}

	calling, _, err := s.UpdateCalling(id, ChangeInput{
		Change:  change,
		ActorID: input.ActorID,
		Note:    "Released",
	})
	return calling, err
}

// DeleteCalling removes a calling. The DELETED history entry carries the final
// snapshot and survives the deletion.
func (s *CallingService) DeleteCalling(id uint64, actorID *uint64) error {
	calling, err := s.callingRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCallingNotFound
		}
		return fmt.Errorf("failed to find calling: %w", err)
	}

	err = s.callingRepo.Transaction(func(tx *gorm.DB) error {
		if _, err := s.recorder.Record(tx, calling.ID, models.HistoryActionDeleted, actorID, calling.State(), ""); err != nil {
			return err
		}
		return tx.Delete(&models.Calling{}, calling.ID).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceConflict, err)
	}
	return nil
}

// ListHistory returns a calling's audit trail oldest-first.
func (s *CallingService) ListHistory(callingID uint64) ([]models.CallingHistory, error) {
	if _, err := s.callingRepo.FindByID(callingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCallingNotFound
		}
		return nil, fmt.Errorf("failed to find calling: %w", err)
	}

	entries, err := s.callingRepo.ListHistory(callingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}

// validateReferences checks that the resolved state's unit, organization and
// position form a consistent chain.
func (s *CallingService) validateReferences(state workflow.CallingState) error {
	unit, err := s.unitRepo.FindByID(state.UnitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnitNotFound
		}
		return fmt.Errorf("failed to verify unit: %w", err)
	}

	org, err := s.orgRepo.FindByID(state.OrganizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrganizationNotFound
		}
		return fmt.Errorf("failed to verify organization: %w", err)
	}
	if org.UnitID != unit.ID {
		return ErrOrganizationNotInUnit
	}

	position, err := s.positionRepo.FindByID(state.PositionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPositionNotFound
		}
		return fmt.Errorf("failed to verify position: %w", err)
	}
	if position.OrganizationID != org.ID {
		return ErrPositionNotInOrg
	}

	if state.HomeUnitID != nil {
		if _, err := s.unitRepo.FindByID(*state.HomeUnitID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnitNotFound
			}
			return fmt.Errorf("failed to verify home unit: %w", err)
		}
	}

	return nil
}

func (s *CallingService) hasNonStatusChanges(changes []workflow.FieldChange) bool {
	for _, c := range changes {
		if c.Field != "status" {
			return true
		}
	}
	return false
}
