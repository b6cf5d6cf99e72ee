package models

import (
	"time"

	"github.com/jhstephenson/callingtrack/internal/workflow"
	"gorm.io/gorm"
)

// Calling is the central mutable entity: an assignment (or proposed
// assignment) of a person to a position, tracked through the approval
// workflow. Status is derived from the approval dates by the workflow
// validator; handlers never write it directly.
type Calling struct {
	ID             uint64  `gorm:"primarykey" json:"id"`
	UnitID         uint64  `gorm:"not null" json:"unit_id"`
	OrganizationID uint64  `gorm:"not null" json:"organization_id"`
	PositionID     uint64  `gorm:"not null" json:"position_id"`
	HomeUnitID     *uint64 `json:"home_unit_id"`

	Name                *string `gorm:"type:varchar(200)" json:"name"`
	ProposedReplacement *string `gorm:"type:varchar(200)" json:"proposed_replacement"`

	Status workflow.Status `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`

	DateCalled    *time.Time `gorm:"type:date" json:"date_called"`
	DateSustained *time.Time `gorm:"type:date" json:"date_sustained"`
	DateSetApart  *time.Time `gorm:"type:date" json:"date_set_apart"`
	DateReleased  *time.Time `gorm:"type:date" json:"date_released"`

	PresidencyApproved *time.Time `gorm:"type:date" json:"presidency_approved"`
	HCApproved         *time.Time `gorm:"column:hc_approved;type:date" json:"hc_approved"`

	BishopConsultedBy string `gorm:"type:varchar(200)" json:"bishop_consulted_by"`
	Notes             string `gorm:"type:text" json:"notes"`
	ReleaseNotes      string `gorm:"type:text" json:"release_notes"`

	LCRUpdated bool `gorm:"column:lcr_updated;not null;default:false" json:"lcr_updated"`
	IsActive   bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Unit         Unit         `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Position     Position     `gorm:"foreignKey:PositionID" json:"position,omitempty"`
	HomeUnit     *Unit        `gorm:"foreignKey:HomeUnitID" json:"home_unit,omitempty"`
}

// State converts the stored record into the validator's state representation.
func (c *Calling) State() workflow.CallingState {
	return workflow.CallingState{
		UnitID:              c.UnitID,
		OrganizationID:      c.OrganizationID,
		PositionID:          c.PositionID,
		HomeUnitID:          c.HomeUnitID,
		Name:                c.Name,
		ProposedReplacement: c.ProposedReplacement,
		Status:              c.Status,
		DateCalled:          c.DateCalled,
		DateSustained:       c.DateSustained,
		DateSetApart:        c.DateSetApart,
		DateReleased:        c.DateReleased,
		PresidencyApproved:  c.PresidencyApproved,
		HCApproved:          c.HCApproved,
		BishopConsultedBy:   c.BishopConsultedBy,
		Notes:               c.Notes,
		ReleaseNotes:        c.ReleaseNotes,
		LCRSynced:           c.LCRUpdated,
		IsActive:            c.IsActive,
	}
}

// ApplyState copies a resolved effective state back onto the stored record.
func (c *Calling) ApplyState(state workflow.CallingState) {
	c.UnitID = state.UnitID
	c.OrganizationID = state.OrganizationID
	c.PositionID = state.PositionID
	c.HomeUnitID = state.HomeUnitID
	c.Name = state.Name
	c.ProposedReplacement = state.ProposedReplacement
	c.Status = state.Status
	c.DateCalled = state.DateCalled
	c.DateSustained = state.DateSustained
	c.DateSetApart = state.DateSetApart
	c.DateReleased = state.DateReleased
	c.PresidencyApproved = state.PresidencyApproved
	c.HCApproved = state.HCApproved
	c.BishopConsultedBy = state.BishopConsultedBy
	c.Notes = state.Notes
	c.ReleaseNotes = state.ReleaseNotes
	c.LCRUpdated = state.LCRSynced
	c.IsActive = state.IsActive
}
