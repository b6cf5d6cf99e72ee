package dto

import (
	"errors"
	"fmt"
	"time"

	"github.com/jhstephenson/callingtrack/internal/models"
	"github.com/jhstephenson/callingtrack/internal/workflow"
)

const dateLayout = "2006-01-02"

// ErrUnknownStatus flags a status value outside the closed status set
var ErrUnknownStatus = errors.New("unknown status")

// CallingRequest is the write payload for creating or updating a calling.
// Dates are YYYY-MM-DD strings; a pointer that is present but empty clears the
// field, an absent pointer leaves it untouched.
type CallingRequest struct {
	UnitID         *uint64 `json:"unit_id"`
	OrganizationID *uint64 `json:"organization_id"`
	PositionID     *uint64 `json:"position_id"`
	HomeUnitID     *uint64 `json:"home_unit_id"`
	ClearHomeUnit  bool    `json:"clear_home_unit"`

	Name                *string `json:"name"`
	ProposedReplacement *string `json:"proposed_replacement"`

	Status *string `json:"status"`

	DateCalled         *string `json:"date_called"`
	DateSustained      *string `json:"date_sustained"`
	DateSetApart       *string `json:"date_set_apart"`
	DateReleased       *string `json:"date_released"`
	PresidencyApproved *string `json:"presidency_approved"`
	HCApproved         *string `json:"hc_approved"`

	BishopConsultedBy *string `json:"bishop_consulted_by"`
	Notes             *string `json:"notes"`
	ReleaseNotes      *string `json:"release_notes"`

	LCRUpdated *bool `json:"lcr_updated"`
	IsActive   *bool `json:"is_active"`

	Note string `json:"note"`
}

// ToChangeRequest converts the wire payload into a validator change request.
func (r *CallingRequest) ToChangeRequest() (workflow.ChangeRequest, error) {
	change := workflow.ChangeRequest{
		UnitID:         r.UnitID,
		OrganizationID: r.OrganizationID,
		PositionID:     r.PositionID,
		HomeUnitID:     r.HomeUnitID,
		ClearHomeUnit:  r.ClearHomeUnit,

		BishopConsultedBy: r.BishopConsultedBy,
		Notes:             r.Notes,
		ReleaseNotes:      r.ReleaseNotes,
		LCRSynced:         r.LCRUpdated,
		IsActive:          r.IsActive,
	}

	if r.Name != nil {
		if *r.Name == "" {
			change.ClearName = true
		} else {
			change.Name = r.Name
		}
	}
	if r.ProposedReplacement != nil {
		if *r.ProposedReplacement == "" {
			change.ClearProposedReplacement = true
		} else {
			change.ProposedReplacement = r.ProposedReplacement
		}
	}

	if r.Status != nil {
		status := workflow.Status(*r.Status)
		if !status.IsValid() {
			return workflow.ChangeRequest{}, fmt.Errorf("%w %q", ErrUnknownStatus, *r.Status)
		}
		change.Status = &status
	}

	var err error
	if change.DateCalled, change.ClearDateCalled, err = parseDateField("date_called", r.DateCalled); err != nil {
		return workflow.ChangeRequest{}, err
	}
	if change.DateSustained, change.ClearDateSustained, err = parseDateField("date_sustained", r.DateSustained); err != nil {
		return workflow.ChangeRequest{}, err
	}
	if change.DateSetApart, change.ClearDateSetApart, err = parseDateField("date_set_apart", r.DateSetApart); err != nil {
		return workflow.ChangeRequest{}, err
	}
	if change.DateReleased, change.ClearDateReleased, err = parseDateField("date_released", r.DateReleased); err != nil {
		return workflow.ChangeRequest{}, err
	}
	if change.PresidencyApproved, change.ClearPresidencyApproved, err = parseDateField("presidency_approved", r.PresidencyApproved); err != nil {
		return workflow.ChangeRequest{}, err
	}
	if change.HCApproved, change.ClearHCApproved, err = parseDateField("hc_approved", r.HCApproved); err != nil {
		return workflow.ChangeRequest{}, err
	}

	return change, nil
}

func parseDateField(name string, value *string) (*time.Time, bool, error) {
	if value == nil {
		return nil, false, nil
	}
	if *value == "" {
		return nil, true, nil
	}
	t, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil, false, fmt.Errorf("invalid %s: expected YYYY-MM-DD", name)
	}
	return &t, false, nil
}

// ReleaseRequest is the write payload for the release action
type ReleaseRequest struct {
	DateReleased string `json:"date_released" binding:"required"`
	ReleaseNotes string `json:"release_notes" binding:"required"`
}

// CallingResponse is the read payload for a calling. DisplayName and
// StatusBadge are derived at response time and never stored.
type CallingResponse struct {
	ID             uint64  `json:"id"`
	UnitID         uint64  `json:"unit_id"`
	OrganizationID uint64  `json:"organization_id"`
	PositionID     uint64  `json:"position_id"`
	HomeUnitID     *uint64 `json:"home_unit_id"`

	Name                *string `json:"name"`
	DisplayName         string  `json:"display_name"`
	ProposedReplacement *string `json:"proposed_replacement"`

	Status      workflow.Status `json:"status"`
	StatusBadge workflow.Badge  `json:"status_badge"`

	DateCalled         *string `json:"date_called"`
	DateSustained      *string `json:"date_sustained"`
	DateSetApart       *string `json:"date_set_apart"`
	DateReleased       *string `json:"date_released"`
	PresidencyApproved *string `json:"presidency_approved"`
	HCApproved         *string `json:"hc_approved"`

	BishopConsultedBy string `json:"bishop_consulted_by"`
	Notes             string `json:"notes"`
	ReleaseNotes      string `json:"release_notes"`

	LCRUpdated bool `json:"lcr_updated"`
	IsActive   bool `json:"is_active"`

	Unit         *UnitResponse         `json:"unit,omitempty"`
	Organization *OrganizationResponse `json:"organization,omitempty"`
	Position     *PositionResponse     `json:"position,omitempty"`
	HomeUnit     *UnitResponse         `json:"home_unit,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToCallingResponse converts a calling model to its response representation
func ToCallingResponse(calling *models.Calling) CallingResponse {
	state := calling.State()

	resp := CallingResponse{
		ID:                  calling.ID,
		UnitID:              calling.UnitID,
		OrganizationID:      calling.OrganizationID,
		PositionID:          calling.PositionID,
		HomeUnitID:          calling.HomeUnitID,
		Name:                calling.Name,
		DisplayName:         workflow.DisplayName(state),
		ProposedReplacement: calling.ProposedReplacement,
		Status:              calling.Status,
		StatusBadge:         workflow.BadgeFor(calling.Status),
		DateCalled:          formatDate(calling.DateCalled),
		DateSustained:       formatDate(calling.DateSustained),
		DateSetApart:        formatDate(calling.DateSetApart),
		DateReleased:        formatDate(calling.DateReleased),
		PresidencyApproved:  formatDate(calling.PresidencyApproved),
		HCApproved:          formatDate(calling.HCApproved),
		BishopConsultedBy:   calling.BishopConsultedBy,
		Notes:               calling.Notes,
		ReleaseNotes:        calling.ReleaseNotes,
		LCRUpdated:          calling.LCRUpdated,
		IsActive:            calling.IsActive,
		CreatedAt:           calling.CreatedAt,
		UpdatedAt:           calling.UpdatedAt,
	}

	if calling.Unit.ID != 0 {
		unit := ToUnitResponse(&calling.Unit)
		resp.Unit = &unit
	}
	if calling.Organization.ID != 0 {
		org := ToOrganizationResponse(&calling.Organization)
		resp.Organization = &org
	}
	if calling.Position.ID != 0 {
		position := ToPositionResponse(&calling.Position)
		resp.Position = &position
	}
	if calling.HomeUnit != nil && calling.HomeUnit.ID != 0 {
		home := ToUnitResponse(calling.HomeUnit)
		resp.HomeUnit = &home
	}

	return resp
}

// ToCallingResponses converts a slice of calling models
func ToCallingResponses(callings []models.Calling) []CallingResponse {
	responses := make([]CallingResponse, 0, len(callings))
	for i := range callings {
		responses = append(responses, ToCallingResponse(&callings[i]))
	}
	return responses
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
