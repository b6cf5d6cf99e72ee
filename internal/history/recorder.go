// Package history appends audit entries for calling transitions. Entries are
// append-only: the recorder exposes no way to modify or remove what has been
// written.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhstephenson/callingtrack/internal/models"
	"github.com/jhstephenson/callingtrack/internal/workflow"
	"gorm.io/gorm"
)

// Recorder writes CallingHistory rows. Record runs on whatever *gorm.DB the
// caller hands in, so wrapping it in the same transaction as the calling save
// makes the pair atomic.
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends one history entry carrying a full snapshot of the resolved
// state. actorID may be nil for system-initiated actions (imports).
func (r *Recorder) Record(tx *gorm.DB, callingID uint64, action models.HistoryAction, actorID *uint64, state workflow.CallingState, note string) (*models.CallingHistory, error) {
	snapshot, err := MarshalSnapshot(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	entry := &models.CallingHistory{
		CallingID: callingID,
		Action:    action,
		ChangedBy: actorID,
		ChangedAt: time.Now(),
		Notes:     note,
		Snapshot:  snapshot,
	}

	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to append history entry: %w", err)
	}

	return entry, nil
}

// snapshotRecord fixes the JSON field names of a stored snapshot independently
// of the workflow package's Go names.
type snapshotRecord struct {
	UnitID              uint64          `json:"unit_id"`
	OrganizationID      uint64          `json:"organization_id"`
	PositionID          uint64          `json:"position_id"`
	HomeUnitID          *uint64         `json:"home_unit_id"`
	Name                *string         `json:"name"`
	ProposedReplacement *string         `json:"proposed_replacement"`
	Status              workflow.Status `json:"status"`
	DateCalled          *string         `json:"date_called"`
	DateSustained       *string         `json:"date_sustained"`
	DateSetApart        *string         `json:"date_set_apart"`
	DateReleased        *string         `json:"date_released"`
	PresidencyApproved  *string         `json:"presidency_approved"`
	HCApproved          *string         `json:"hc_approved"`
	BishopConsultedBy   string          `json:"bishop_consulted_by"`
	Notes               string          `json:"notes"`
	ReleaseNotes        string          `json:"release_notes"`
	LCRUpdated          bool            `json:"lcr_updated"`
	IsActive            bool            `json:"is_active"`
}

// MarshalSnapshot serializes the complete resolved state. Dates are stored as
// plain YYYY-MM-DD strings.
func MarshalSnapshot(state workflow.CallingState) (json.RawMessage, error) {
	rec := snapshotRecord{
		UnitID:              state.UnitID,
		OrganizationID:      state.OrganizationID,
		PositionID:          state.PositionID,
		HomeUnitID:          state.HomeUnitID,
		Name:                state.Name,
		ProposedReplacement: state.ProposedReplacement,
		Status:              state.Status,
		DateCalled:          dateString(state.DateCalled),
		DateSustained:       dateString(state.DateSustained),
		DateSetApart:        dateString(state.DateSetApart),
		DateReleased:        dateString(state.DateReleased),
		PresidencyApproved:  dateString(state.PresidencyApproved),
		HCApproved:          dateString(state.HCApproved),
		BishopConsultedBy:   state.BishopConsultedBy,
		Notes:               state.Notes,
		ReleaseNotes:        state.ReleaseNotes,
		LCRUpdated:          state.LCRSynced,
		IsActive:            state.IsActive,
	}
	return json.Marshal(rec)
}

// UnmarshalSnapshot reconstructs a point-in-time state from one entry.
func UnmarshalSnapshot(raw json.RawMessage) (workflow.CallingState, error) {
	var rec snapshotRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return workflow.CallingState{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	state := workflow.CallingState{
		UnitID:              rec.UnitID,
		OrganizationID:      rec.OrganizationID,
		PositionID:          rec.PositionID,
		HomeUnitID:          rec.HomeUnitID,
		Name:                rec.Name,
		ProposedReplacement: rec.ProposedReplacement,
		Status:              rec.Status,
		BishopConsultedBy:   rec.BishopConsultedBy,
		Notes:               rec.Notes,
		ReleaseNotes:        rec.ReleaseNotes,
		LCRSynced:           rec.LCRUpdated,
		IsActive:            rec.IsActive,
	}

	var err error
	if state.DateCalled, err = parseDate(rec.DateCalled); err != nil {
		return workflow.CallingState{}, err
	}
	if state.DateSustained, err = parseDate(rec.DateSustained); err != nil {
		return workflow.CallingState{}, err
	}
	if state.DateSetApart, err = parseDate(rec.DateSetApart); err != nil {
		return workflow.CallingState{}, err
	}
	if state.DateReleased, err = parseDate(rec.DateReleased); err != nil {
		return workflow.CallingState{}, err
	}
	if state.PresidencyApproved, err = parseDate(rec.PresidencyApproved); err != nil {
		return workflow.CallingState{}, err
	}
	if state.HCApproved, err = parseDate(rec.HCApproved); err != nil {
		return workflow.CallingState{}, err
	}

	return state, nil
}

const dateLayout = "2006-01-02"

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot date %q: %w", *s, err)
	}
	return &t, nil
}
