package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jhstephenson/callingtrack/internal/dto"
	apierrors "github.com/jhstephenson/callingtrack/internal/errors"
	"github.com/jhstephenson/callingtrack/internal/models"
	"github.com/jhstephenson/callingtrack/internal/services"
	"github.com/jhstephenson/callingtrack/internal/utils"
	"github.com/sirupsen/logrus"
)

// StructureHandler handles unit, organization and position endpoints
type StructureHandler struct {
	structureService *services.StructureService
}

// NewStructureHandler creates a new StructureHandler
func NewStructureHandler(structureService *services.StructureService) *StructureHandler {
	return &StructureHandler{structureService: structureService}
}

// Units

// ListUnits handles GET /api/units
func (h *StructureHandler) ListUnits(c *gin.Context) {
	pagination := utils.GetPaginationParams(c)
	activeOnly := c.Query("active") == "true"

	units, total, err := h.structureService.ListUnits(activeOnly, pagination.Page, pagination.Limit)
	if err != nil {
		logrus.WithError(err).Error("Failed to list units")
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"units": dto.ToUnitResponses(units),
		"pagination": utils.PaginationResponse{
			Page:  pagination.Page,
			Limit: pagination.Limit,
			Total: total,
		},
	})
}

// GetUnit handles GET /api/units/:id
func (h *StructureHandler) GetUnit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid unit ID")
		return
	}

	unit, err := h.structureService.GetUnit(id)
	if err != nil {
		h.respondStructureError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUnitResponse(unit))
}

// CreateUnit handles POST /api/units
func (h *StructureHandler) CreateUnit(c *gin.Context) {
	var req dto.UnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	unit, err := h.structureService.CreateUnit(services.UnitInput{
		Name:         req.Name,
		UnitType:     models.UnitType(req.UnitType),
		ParentUnitID: req.ParentUnitID,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	})
	if err != nil {
		h.respondStructureError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToUnitResponse(unit))
}

// UpdateUnit handles PUT /api/units/:id
func (h *StructureHandler) UpdateUnit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid unit ID")
		return
	}

	var req dto.UnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	unit, err := h.structureService.UpdateUnit(id, services.UnitInput{
		Name:            req.Name,
		UnitType:        models.UnitType(req.UnitType),
		ParentUnitID:    req.ParentUnitID,
		ClearParentUnit: req.ClearParentUnit,
		DisplayOrder:    req.DisplayOrder,
		IsActive:        req.IsActive,
	})
	if err != nil {
		h.respondStructureError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUnitResponse(unit))
}

// DeleteUnit handles DELETE /api/units/:id
func (h *StructureHandler) DeleteUnit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid unit ID")
		return
	}

	if err := h.structureService.DeleteUnit(id); err != nil {
		h.respondStructureError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unit deleted"})
}

// Organizations

// ListOrganizations handles GET /api/organizations
func (h *StructureHandler) ListOrganizations(c *gin.Context) {
	pagination := utils.GetPaginationParams(c)
	activeOnly := c.Query("active") == "true"

	unitID, ok := parseOptionalID(c, "unit_id")
	if !ok {
		apierrors.BadRequest(c, "Invalid unit_id")
		return
	}

	orgs, total, err := h.structureService.ListOrganizations(unitID, activeOnly, pagination.Page, pagination.Limit)
	if err != nil {
		logrus.WithError(err).Error("Failed to list organizations")
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organizations": dto.ToOrganizationResponses(orgs),
		"pagination": utils.PaginationResponse{
			Page:  pagination.Page,
			Limit: pagination.Limit,
			Total: total,
		},
	})
}

// GetOrganization handles GET /api/organizations/:id
func (h *StructureHandler) GetOrganization(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid organization ID")
		return
	}

	org, err := h.structureService.GetOrganization(id)
	if err != nil {
		h.respondStructureError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrganizationResponse(org))
}

// CreateOrganization handles POST /api/organizations
func (h *StructureHandler) CreateOrganization(c *gin.Context) {
	var req dto.OrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.structureService.CreateOrganization(services.OrganizationInput{
		UnitID:       req.UnitID,
		Name:         req.Name,
		Leader:       req.Leader,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	})
	if err != nil {
		h.respondStructureError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToOrganizationResponse(org))
}

// UpdateOrganization handles PUT /api/organizations/:id
func (h *StructureHandler) UpdateOrganization(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid organization ID")
		return
	}

	var req dto.OrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.structureService.UpdateOrganization(id, services.OrganizationInput{
		UnitID:       req.UnitID,
		Name:         req.Name,
		Leader:       req.Leader,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	})
	if err != nil {
		h.respondStructureError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrganizationResponse(org))
}

// DeleteOrganization handles DELETE /api/organizations/:id
func (h *StructureHandler) DeleteOrganization(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid organization ID")
		return
	}

	if err := h.structureService.DeleteOrganization(id); err != nil {
		h.respondStructureError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Organization deleted"})
}

// Positions

// ListPositions handles GET /api/positions
func (h *StructureHandler) ListPositions(c *gin.Context) {
	pagination := utils.GetPaginationParams(c)
	activeOnly := c.Query("active") == "true"

	orgID, ok := parseOptionalID(c, "organization_id")
	if !ok {
		apierrors.BadRequest(c, "Invalid organization_id")
		return
	}

	positions, total, err := h.structureService.ListPositions(orgID, activeOnly, pagination.Page, pagination.Limit)
	if err != nil {
		logrus.WithError(err).Error("Failed to list positions")
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"positions": dto.ToPositionResponses(positions),
		"pagination": utils.PaginationResponse{
			Page:  pagination.Page,
			Limit: pagination.Limit,
			Total: total,
		},
	})
}

// GetPosition handles GET /api/positions/:id
func (h *StructureHandler) GetPosition(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid position ID")
		return
	}

	position, err := h.structureService.GetPosition(id)
	if err != nil {
		h.respondStructureError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPositionResponse(position))
}

// CreatePosition handles POST /api/positions
func (h *StructureHandler) CreatePosition(c *gin.Context) {
	var req dto.PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	position, err := h.structureService.CreatePosition(services.PositionInput{
		OrganizationID:       req.OrganizationID,
		Title:                req.Title,
		IsLeadership:         req.IsLeadership,
		RequiresSettingApart: req.RequiresSettingApart,
		DisplayOrder:         req.DisplayOrder,
		IsActive:             req.IsActive,
	})
	if err != nil {
		h.respondStructureError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToPositionResponse(position))
}

// UpdatePosition handles PUT /api/positions/:id
func (h *StructureHandler) UpdatePosition(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid position ID")
		return
	}

	var req dto.PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	position, err := h.structureService.UpdatePosition(id, services.PositionInput{
		OrganizationID:       req.OrganizationID,
		Title:                req.Title,
		IsLeadership:         req.IsLeadership,
		RequiresSettingApart: req.RequiresSettingApart,
		DisplayOrder:         req.DisplayOrder,
		IsActive:             req.IsActive,
	})
	if err != nil {
		h.respondStructureError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPositionResponse(position))
}

// DeletePosition handles DELETE /api/positions/:id
func (h *StructureHandler) DeletePosition(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid position ID")
		return
	}

	if err := h.structureService.DeletePosition(id); err != nil {
		h.respondStructureError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Position deleted"})
}

// respondStructureError maps structure service errors onto API error responses
func (h *StructureHandler) respondStructureError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnitNotFound):
		apierrors.NotFound(c, "Unit not found")
	case errors.Is(err, services.ErrOrganizationNotFound):
		apierrors.NotFound(c, "Organization not found")
	case errors.Is(err, services.ErrPositionNotFound):
		apierrors.NotFound(c, "Position not found")
	case errors.Is(err, services.ErrUnitInUse),
		errors.Is(err, services.ErrOrganizationInUse),
		errors.Is(err, services.ErrPositionInUse):
		apierrors.RespondWithError(c, http.StatusConflict,
			apierrors.NewAPIError(apierrors.ErrCodeReferentialViolation, err.Error()))
	case errors.Is(err, services.ErrUnitParentCycle),
		errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidUnitType):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrDuplicatePosition):
		apierrors.Conflict(c, err.Error())
	default:
		logrus.WithError(err).Error("Structure operation failed")
		apierrors.InternalError(c, "")
	}
}
