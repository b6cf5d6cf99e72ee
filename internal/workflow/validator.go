package workflow

import (
	"fmt"
	"time"
)

// DateOrderError reports a pair of milestone dates that violate the required
// chronological order (called <= sustained <= set apart <= released).
type DateOrderError struct {
	Earlier string
	Later   string
}

func (e *DateOrderError) Error() string {
	return fmt.Sprintf("%s cannot be before %s", e.Later, e.Earlier)
}

// Milestone date field names in their required chronological order.
const (
	FieldDateCalled    = "date_called"
	FieldDateSustained = "date_sustained"
	FieldDateSetApart  = "date_set_apart"
	FieldDateReleased  = "date_released"
)

// ProposeChange merges the requested fields onto the current state, validates
// milestone date ordering, derives the effective status from the approval
// dates, and returns the resolved state together with a field-level diff.
// It is a pure function; persistence is the caller's responsibility.
func ProposeChange(current CallingState, req ChangeRequest) (*Resolution, error) {
	merged := merge(current, req)

	if err := validateDateOrder(merged); err != nil {
		return nil, err
	}

	merged.Status = deriveStatus(current, merged, req)

	res := &Resolution{
		Effective:      merged,
		Changes:        diff(current, merged),
		PreviousStatus: current.Status,
		StatusChanged:  current.Status != "" && current.Status != merged.Status,
	}
	return res, nil
}

func merge(current CallingState, req ChangeRequest) CallingState {
	out := current

	if req.UnitID != nil {
		out.UnitID = *req.UnitID
	}
	if req.OrganizationID != nil {
		out.OrganizationID = *req.OrganizationID
	}
	if req.PositionID != nil {
		out.PositionID = *req.PositionID
	}

	if req.ClearHomeUnit {
		out.HomeUnitID = nil
	} else if req.HomeUnitID != nil {
		out.HomeUnitID = req.HomeUnitID
	}

	if req.ClearName {
		out.Name = nil
	} else if req.Name != nil {
		out.Name = req.Name
	}

	if req.ClearProposedReplacement {
		out.ProposedReplacement = nil
	} else if req.ProposedReplacement != nil {
		out.ProposedReplacement = req.ProposedReplacement
	}

	out.DateCalled = mergeDate(out.DateCalled, req.DateCalled, req.ClearDateCalled)
	out.DateSustained = mergeDate(out.DateSustained, req.DateSustained, req.ClearDateSustained)
	out.DateSetApart = mergeDate(out.DateSetApart, req.DateSetApart, req.ClearDateSetApart)
	out.DateReleased = mergeDate(out.DateReleased, req.DateReleased, req.ClearDateReleased)
	out.PresidencyApproved = mergeDate(out.PresidencyApproved, req.PresidencyApproved, req.ClearPresidencyApproved)
	out.HCApproved = mergeDate(out.HCApproved, req.HCApproved, req.ClearHCApproved)

	if req.BishopConsultedBy != nil {
		out.BishopConsultedBy = *req.BishopConsultedBy
	}
	if req.Notes != nil {
		out.Notes = *req.Notes
	}
	if req.ReleaseNotes != nil {
		out.ReleaseNotes = *req.ReleaseNotes
	}
	if req.LCRSynced != nil {
		out.LCRSynced = *req.LCRSynced
	}
	if req.IsActive != nil {
		out.IsActive = *req.IsActive
	}

	return out
}

func mergeDate(current, requested *time.Time, clear bool) *time.Time {
	if clear {
		return nil
	}
	if requested != nil {
		return requested
	}
	return current
}

func validateDateOrder(state CallingState) error {
	ordered := []struct {
		name string
		date *time.Time
	}{
		{FieldDateCalled, state.DateCalled},
		{FieldDateSustained, state.DateSustained},
		{FieldDateSetApart, state.DateSetApart},
		{FieldDateReleased, state.DateReleased},
	}

	for i := 0; i < len(ordered); i++ {
		if ordered[i].date == nil {
			continue
		}
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].date == nil {
				continue
			}
			if ordered[j].date.Before(*ordered[i].date) {
				return &DateOrderError{Earlier: ordered[i].name, Later: ordered[j].name}
			}
		}
	}
	return nil
}

// deriveStatus resolves the effective status. Approval is evidenced by dates,
// so whenever an approval date is present the status follows it; an explicit
// ON_HOLD or LCR_UPDATED in the same request wins over derivation, and a
// previously persisted explicit state survives updates that leave the approval
// dates untouched.
func deriveStatus(current, merged CallingState, req ChangeRequest) Status {
	explicit := req.Status

	if merged.HCApproved != nil {
		if explicit != nil && (*explicit == StatusOnHold || *explicit == StatusLCRUpdated) {
			return *explicit
		}
		hcTouched := req.HCApproved != nil || req.ClearHCApproved
		if !hcTouched && explicit == nil &&
			(current.Status == StatusOnHold || current.Status == StatusLCRUpdated) {
			return current.Status
		}
		return StatusHCApproved
	}

	if merged.PresidencyApproved != nil {
		if explicit != nil {
			switch *explicit {
			case StatusOnHold, StatusLCRUpdated, StatusCalled:
				return *explicit
			}
			return StatusApproved
		}
		switch current.Status {
		case StatusOnHold, StatusLCRUpdated, StatusCalled:
			return current.Status
		}
		return StatusApproved
	}

	if explicit != nil {
		return *explicit
	}
	if current.Status == "" {
		return StatusPending
	}
	return current.Status
}

func diff(old, new CallingState) []FieldChange {
	var changes []FieldChange

	add := func(field string, oldV, newV any) {
		changes = append(changes, FieldChange{Field: field, Old: oldV, New: newV})
	}

	if old.UnitID != new.UnitID {
		add("unit_id", old.UnitID, new.UnitID)
	}
	if old.OrganizationID != new.OrganizationID {
		add("organization_id", old.OrganizationID, new.OrganizationID)
	}
	if old.PositionID != new.PositionID {
		add("position_id", old.PositionID, new.PositionID)
	}
	if !equalUint64Ptr(old.HomeUnitID, new.HomeUnitID) {
		add("home_unit_id", derefAny(old.HomeUnitID), derefAny(new.HomeUnitID))
	}
	if !equalStringPtr(old.Name, new.Name) {
		add("name", derefAny(old.Name), derefAny(new.Name))
	}
	if !equalStringPtr(old.ProposedReplacement, new.ProposedReplacement) {
		add("proposed_replacement", derefAny(old.ProposedReplacement), derefAny(new.ProposedReplacement))
	}
	if old.Status != new.Status {
		add("status", old.Status, new.Status)
	}
	if !equalDatePtr(old.DateCalled, new.DateCalled) {
		add(FieldDateCalled, dateAny(old.DateCalled), dateAny(new.DateCalled))
	}
	if !equalDatePtr(old.DateSustained, new.DateSustained) {
		add(FieldDateSustained, dateAny(old.DateSustained), dateAny(new.DateSustained))
	}
	if !equalDatePtr(old.DateSetApart, new.DateSetApart) {
		add(FieldDateSetApart, dateAny(old.DateSetApart), dateAny(new.DateSetApart))
	}
	if !equalDatePtr(old.DateReleased, new.DateReleased) {
		add(FieldDateReleased, dateAny(old.DateReleased), dateAny(new.DateReleased))
	}
	if !equalDatePtr(old.PresidencyApproved, new.PresidencyApproved) {
		add("presidency_approved", dateAny(old.PresidencyApproved), dateAny(new.PresidencyApproved))
	}
	if !equalDatePtr(old.HCApproved, new.HCApproved) {
		add("hc_approved", dateAny(old.HCApproved), dateAny(new.HCApproved))
	}
	if old.BishopConsultedBy != new.BishopConsultedBy {
		add("bishop_consulted_by", old.BishopConsultedBy, new.BishopConsultedBy)
	}
	if old.Notes != new.Notes {
		add("notes", old.Notes, new.Notes)
	}
	if old.ReleaseNotes != new.ReleaseNotes {
		add("release_notes", old.ReleaseNotes, new.ReleaseNotes)
	}
	if old.LCRSynced != new.LCRSynced {
		add("lcr_updated", old.LCRSynced, new.LCRSynced)
	}
	if old.IsActive != new.IsActive {
		add("is_active", old.IsActive, new.IsActive)
	}

	return changes
}

func equalUint64Ptr(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalDatePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func derefAny[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func dateAny(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.Format("2006-01-02")
}
