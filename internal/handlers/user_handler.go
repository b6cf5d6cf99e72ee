package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jhstephenson/callingtrack/internal/dto"
	apierrors "github.com/jhstephenson/callingtrack/internal/errors"
	"github.com/jhstephenson/callingtrack/internal/permissions"
	"github.com/jhstephenson/callingtrack/internal/services"
	"github.com/sirupsen/logrus"
)

// UserHandler handles user administration endpoints
type UserHandler struct {
	authService *services.AuthService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// ListGroups handles GET /api/groups
func (h *UserHandler) ListGroups(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"groups": permissions.AllGroups})
}

// SetGroups handles POST /api/users/:id/groups
func (h *UserHandler) SetGroups(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	var req dto.SetGroupsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.SetUserGroups(id, req.Groups)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			apierrors.NotFound(c, "User not found")
		case errors.Is(err, services.ErrUnknownGroup):
			apierrors.BadRequest(c, err.Error())
		default:
			logrus.WithError(err).Error("Failed to set user groups")
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}
