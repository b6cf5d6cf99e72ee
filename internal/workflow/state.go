package workflow

import "time"

// CallingState is the full resolved state of a calling as the validator sees
// it. It carries no persistence concerns; the service layer converts between
// this and the stored model.
type CallingState struct {
	UnitID         uint64
	OrganizationID uint64
	PositionID     uint64
	HomeUnitID     *uint64

	Name                *string
	ProposedReplacement *string

	Status Status

	DateCalled    *time.Time
	DateSustained *time.Time
	DateSetApart  *time.Time
	DateReleased  *time.Time

	PresidencyApproved *time.Time
	HCApproved         *time.Time

	BishopConsultedBy string
	Notes             string
	ReleaseNotes      string

	LCRSynced bool
	IsActive  bool
}

// ChangeRequest is the subset of fields a caller wants to change. Nil pointer
// means "leave as is"; the Clear flags null out the corresponding nullable
// field.
type ChangeRequest struct {
	UnitID         *uint64
	OrganizationID *uint64
	PositionID     *uint64

	HomeUnitID    *uint64
	ClearHomeUnit bool

	Name      *string
	ClearName bool

	ProposedReplacement      *string
	ClearProposedReplacement bool

	Status *Status

	DateCalled         *time.Time
	ClearDateCalled    bool
	DateSustained      *time.Time
	ClearDateSustained bool
	DateSetApart       *time.Time
	ClearDateSetApart  bool
	DateReleased       *time.Time
	ClearDateReleased  bool

	PresidencyApproved      *time.Time
	ClearPresidencyApproved bool
	HCApproved              *time.Time
	ClearHCApproved         bool

	BishopConsultedBy *string
	Notes             *string
	ReleaseNotes      *string

	LCRSynced *bool
	IsActive  *bool
}

// FieldChange records one field's old and new value for history purposes.
type FieldChange struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

// Resolution is the outcome of a successful ProposeChange: the fully resolved
// new state plus the diff against the prior state.
type Resolution struct {
	Effective      CallingState
	Changes        []FieldChange
	PreviousStatus Status
	StatusChanged  bool
}

const activeMarker = " (active)"

// DisplayName derives the presentation name for a calling's occupant. An
// occupied calling with no release date gets the active marker appended. The
// result is never persisted.
func DisplayName(state CallingState) string {
	if state.Name == nil || *state.Name == "" {
		return ""
	}
	if state.DateReleased == nil {
		return *state.Name + activeMarker
	}
	return *state.Name
}
