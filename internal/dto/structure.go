package dto

import (
	"time"

	"github.com/jhstephenson/callingtrack/internal/models"
)

// UnitRequest is the write payload for creating or updating a unit.
// ClearParentUnit detaches an existing parent; an absent ParentUnitID leaves
// the parent unchanged.
type UnitRequest struct {
	Name            string  `json:"name"`
	UnitType        string  `json:"unit_type"`
	ParentUnitID    *uint64 `json:"parent_unit_id"`
	ClearParentUnit bool    `json:"clear_parent_unit"`
	DisplayOrder    int     `json:"display_order"`
	IsActive        *bool   `json:"is_active"`
}

// UnitResponse is the read payload for a unit
type UnitResponse struct {
	ID           uint64          `json:"id"`
	Name         string          `json:"name"`
	UnitType     models.UnitType `json:"unit_type"`
	ParentUnitID *uint64         `json:"parent_unit_id"`
	DisplayOrder int             `json:"display_order"`
	IsActive     bool            `json:"is_active"`
	ParentUnit   *UnitResponse   `json:"parent_unit,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToUnitResponse converts a unit model to its response representation
func ToUnitResponse(unit *models.Unit) UnitResponse {
	resp := UnitResponse{
		ID:           unit.ID,
		Name:         unit.Name,
		UnitType:     unit.UnitType,
		ParentUnitID: unit.ParentUnitID,
		DisplayOrder: unit.DisplayOrder,
		IsActive:     unit.IsActive,
		CreatedAt:    unit.CreatedAt,
		UpdatedAt:    unit.UpdatedAt,
	}
	if unit.ParentUnit != nil && unit.ParentUnit.ID != 0 {
		parent := ToUnitResponse(unit.ParentUnit)
		resp.ParentUnit = &parent
	}
	return resp
}

// ToUnitResponses converts a slice of unit models
func ToUnitResponses(units []models.Unit) []UnitResponse {
	responses := make([]UnitResponse, 0, len(units))
	for i := range units {
		responses = append(responses, ToUnitResponse(&units[i]))
	}
	return responses
}

// OrganizationRequest is the write payload for creating or updating an organization
type OrganizationRequest struct {
	UnitID       uint64 `json:"unit_id"`
	Name         string `json:"name"`
	Leader       string `json:"leader"`
	DisplayOrder int    `json:"display_order"`
	IsActive     *bool  `json:"is_active"`
}

// OrganizationResponse is the read payload for an organization
type OrganizationResponse struct {
	ID           uint64        `json:"id"`
	UnitID       uint64        `json:"unit_id"`
	Name         string        `json:"name"`
	Leader       string        `json:"leader"`
	DisplayOrder int           `json:"display_order"`
	IsActive     bool          `json:"is_active"`
	Unit         *UnitResponse `json:"unit,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// ToOrganizationResponse converts an organization model to its response representation
func ToOrganizationResponse(org *models.Organization) OrganizationResponse {
	resp := OrganizationResponse{
		ID:           org.ID,
		UnitID:       org.UnitID,
		Name:         org.Name,
		Leader:       org.Leader,
		DisplayOrder: org.DisplayOrder,
		IsActive:     org.IsActive,
		CreatedAt:    org.CreatedAt,
		UpdatedAt:    org.UpdatedAt,
	}
	if org.Unit.ID != 0 {
		unit := ToUnitResponse(&org.Unit)
		resp.Unit = &unit
	}
	return resp
}

// ToOrganizationResponses converts a slice of organization models
func ToOrganizationResponses(orgs []models.Organization) []OrganizationResponse {
	responses := make([]OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		responses = append(responses, ToOrganizationResponse(&orgs[i]))
	}
	return responses
}

// PositionRequest is the write payload for creating or updating a position
type PositionRequest struct {
	OrganizationID       uint64 `json:"organization_id"`
	Title                string `json:"title"`
	IsLeadership         *bool  `json:"is_leadership"`
	RequiresSettingApart *bool  `json:"requires_setting_apart"`
	DisplayOrder         int    `json:"display_order"`
	IsActive             *bool  `json:"is_active"`
}

// PositionResponse is the read payload for a position
type PositionResponse struct {
	ID                   uint64                `json:"id"`
	OrganizationID       uint64                `json:"organization_id"`
	Title                string                `json:"title"`
	IsLeadership         bool                  `json:"is_leadership"`
	RequiresSettingApart bool                  `json:"requires_setting_apart"`
	DisplayOrder         int                   `json:"display_order"`
	IsActive             bool                  `json:"is_active"`
	Organization         *OrganizationResponse `json:"organization,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

// ToPositionResponse converts a position model to its response representation
func ToPositionResponse(position *models.Position) PositionResponse {
	resp := PositionResponse{
		ID:                   position.ID,
		OrganizationID:       position.OrganizationID,
		Title:                position.Title,
		IsLeadership:         position.IsLeadership,
		RequiresSettingApart: position.RequiresSettingApart,
		DisplayOrder:         position.DisplayOrder,
		IsActive:             position.IsActive,
		CreatedAt:            position.CreatedAt,
		UpdatedAt:            position.UpdatedAt,
	}
	if position.Organization.ID != 0 {
		org := ToOrganizationResponse(&position.Organization)
		resp.Organization = &org
	}
	return resp
}

// ToPositionResponses converts a slice of position models
func ToPositionResponses(positions []models.Position) []PositionResponse {
	responses := make([]PositionResponse, 0, len(positions))
	for i := range positions {
		responses = append(responses, ToPositionResponse(&positions[i]))
	}
	return responses
}
