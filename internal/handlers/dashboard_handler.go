package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/jhstephenson/callingtrack/internal/errors"
	"github.com/jhstephenson/callingtrack/internal/services"
	"github.com/sirupsen/logrus"
)

// DashboardHandler handles the dashboard summary endpoint
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Summary handles GET /api/dashboard
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboardService.Summary(time.Now())
	if err != nil {
		logrus.WithError(err).Error("Failed to build dashboard summary")
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, summary)
}
