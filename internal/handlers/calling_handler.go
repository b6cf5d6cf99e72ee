package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jhstephenson/callingtrack/internal/dto"
	apierrors "github.com/jhstephenson/callingtrack/internal/errors"
	"github.com/jhstephenson/callingtrack/internal/middleware"
	"github.com/jhstephenson/callingtrack/internal/repository"
	"github.com/jhstephenson/callingtrack/internal/services"
	"github.com/jhstephenson/callingtrack/internal/utils"
	"github.com/jhstephenson/callingtrack/internal/workflow"
	"github.com/sirupsen/logrus"
)

// CallingHandler handles calling endpoints
type CallingHandler struct {
	callingService *services.CallingService
}

// NewCallingHandler creates a new CallingHandler
func NewCallingHandler(callingService *services.CallingService) *CallingHandler {
	return &CallingHandler{callingService: callingService}
}

// List handles GET /api/callings
func (h *CallingHandler) List(c *gin.Context) {
	pagination := utils.GetPaginationParams(c)

	filter := repository.CallingFilter{
		ActiveOnly: c.Query("active") == "true",
		Page:       pagination.Page,
		PageSize:   pagination.Limit,
	}

	var ok bool
	if filter.UnitID, ok = parseOptionalID(c, "unit_id"); !ok {
		apierrors.BadRequest(c, "Invalid unit_id")
		return
	}
	if filter.OrganizationID, ok = parseOptionalID(c, "organization_id"); !ok {
		apierrors.BadRequest(c, "Invalid organization_id")
		return
	}
	if filter.PositionID, ok = parseOptionalID(c, "position_id"); !ok {
		apierrors.BadRequest(c, "Invalid position_id")
		return
	}
	if raw := c.Query("status"); raw != "" {
		status := workflow.Status(raw)
		if !status.IsValid() {
			apierrors.BadRequest(c, "Unknown status")
			return
		}
		filter.Status = &status
	}

	callings, total, err := h.callingService.ListCallings(filter)
	if err != nil {
		logrus.WithError(err).Error("Failed to list callings")
		apierrors.InternalError(c, "")
		return
	}

	statusCounts, err := h.callingService.StatusCounts()
	if err != nil {
		logrus.WithError(err).Error("Failed to count callings by status")
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"callings":      dto.ToCallingResponses(callings),
		"status_counts": statusCounts,
		"pagination": utils.PaginationResponse{
			Page:  pagination.Page,
			Limit: pagination.Limit,
			Total: total,
		},
	})
}

// Get handles GET /api/callings/:id
func (h *CallingHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid calling ID")
		return
	}

	calling, err := h.callingService.GetCalling(id)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCallingResponse(calling))
}

// Create handles POST /api/callings
func (h *CallingHandler) Create(c *gin.Context) {
	var req dto.CallingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	change, err := req.ToChangeRequest()
	if err != nil {
		if errors.Is(err, dto.ErrUnknownStatus) {
			apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidStatusTransition, err.Error(), nil)
			return
		}
		apierrors.BadRequest(c, err.Error())
		return
	}

	actorID := actorIDFrom(c)
	calling, err := h.callingService.CreateCalling(services.ChangeInput{
		Change:  change,
		ActorID: actorID,
		Note:    req.Note,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCallingResponse(calling))
}

// Update handles PATCH /api/callings/:id
func (h *CallingHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid calling ID")
		return
	}

	var req dto.CallingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	change, err := req.ToChangeRequest()
	if err != nil {
		if errors.Is(err, dto.ErrUnknownStatus) {
			apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidStatusTransition, err.Error(), nil)
			return
		}
		apierrors.BadRequest(c, err.Error())
		return
	}

	actorID := actorIDFrom(c)
	calling, _, err := h.callingService.UpdateCalling(id, services.ChangeInput{
		Change:  change,
		ActorID: actorID,
		Note:    req.Note,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCallingResponse(calling))
}

// Release handles POST /api/callings/:id/release
func (h *CallingHandler) Release(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid calling ID")
		return
	}

	var req dto.ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "date_released and release_notes are required")
		return
	}

	dateReleased, err := time.Parse("2006-01-02", req.DateReleased)
	if err != nil {
		apierrors.BadRequest(c, "invalid date_released: expected YYYY-MM-DD")
		return
	}

	actorID := actorIDFrom(c)
	calling, err := h.callingService.ReleaseCalling(id, services.ReleaseInput{
		DateReleased: dateReleased,
		ReleaseNotes: req.ReleaseNotes,
		ActorID:      actorID,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCallingResponse(calling))
}

// Delete handles DELETE /api/callings/:id
func (h *CallingHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid calling ID")
		return
	}

	if err := h.callingService.DeleteCalling(id, actorIDFrom(c)); err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Calling deleted"})
}

// History handles GET /api/callings/:id/history
func (h *CallingHandler) History(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid calling ID")
		return
	}

	entries, err := h.callingService.ListHistory(id)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": dto.ToHistoryResponses(entries)})
}

// respondServiceError maps calling service errors onto API error responses
func (h *CallingHandler) respondServiceError(c *gin.Context, err error) {
	var dateErr *workflow.DateOrderError
	if errors.As(err, &dateErr) {
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeDateOrderViolation, dateErr.Error(), gin.H{
			"earlier": dateErr.Earlier,
			"later":   dateErr.Later,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrCallingNotFound):
		apierrors.NotFound(c, "Calling not found")
	case errors.Is(err, services.ErrUnitNotFound),
		errors.Is(err, services.ErrOrganizationNotFound),
		errors.Is(err, services.ErrPositionNotFound):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeReferentialViolation, err.Error(), nil)
	case errors.Is(err, services.ErrOrganizationNotInUnit),
		errors.Is(err, services.ErrPositionNotInOrg):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeReferentialViolation, err.Error(), nil)
	case errors.Is(err, services.ErrReferencesRequired),
		errors.Is(err, services.ErrReleaseNotesRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrPersistenceConflict):
		apierrors.PersistenceConflict(c, "")
	default:
		logrus.WithError(err).Error("Calling operation failed")
		apierrors.InternalError(c, "")
	}
}

func actorIDFrom(c *gin.Context) *uint64 {
	if id, ok := middleware.GetUserID(c); ok {
		return &id
	}
	return nil
}
