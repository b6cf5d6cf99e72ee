package services

import (
	"fmt"
	"time"

	"github.com/jhstephenson/callingtrack/internal/models"
	"github.com/jhstephenson/callingtrack/internal/repository"
	"github.com/jhstephenson/callingtrack/internal/workflow"
)

const (
	upcomingReleaseWindow = 30 * 24 * time.Hour
	dashboardListLimit    = 10
)

// DashboardConfig tunes what the summary counts.
type DashboardConfig struct {
	// ExcludedStatuses are left out of the per-status counts, typically
	// statuses that mean the record-keeping is finished.
	ExcludedStatuses []workflow.Status
}

// DashboardSummary is the aggregate view served at /api/dashboard.
type DashboardSummary struct {
	TotalUnits       int64                    `json:"total_units"`
	TotalCallings    int64                    `json:"total_callings"`
	StatusCounts     []repository.StatusCount `json:"status_counts"`
	UpcomingReleases []models.Calling         `json:"upcoming_releases"`
	RecentCallings   []models.Calling         `json:"recent_callings"`
	RecentActivity   []models.CallingHistory  `json:"recent_activity"`
}

// DashboardService aggregates counts and recent activity for the landing page
type DashboardService struct {
	callingRepo repository.CallingRepository
	unitRepo    repository.UnitRepository
	config      DashboardConfig
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(callingRepo repository.CallingRepository, unitRepo repository.UnitRepository, config DashboardConfig) *DashboardService {
	return &DashboardService{
		callingRepo: callingRepo,
		unitRepo:    unitRepo,
		config:      config,
	}
}

// Summary builds the dashboard aggregate. The release window runs from now
// through the next thirty days.
func (s *DashboardService) Summary(now time.Time) (*DashboardSummary, error) {
	totalUnits, err := s.unitRepo.CountTotal()
	if err != nil {
		return nil, fmt.Errorf("failed to count units: %w", err)
	}

	totalCallings, err := s.callingRepo.CountTotal()
	if err != nil {
		return nil, fmt.Errorf("failed to count callings: %w", err)
	}

	statusCounts, err := s.callingRepo.CountByStatus(s.config.ExcludedStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to count callings by status: %w", err)
	}

	upcoming, err := s.callingRepo.UpcomingReleases(now, now.Add(upcomingReleaseWindow), dashboardListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming releases: %w", err)
	}

	recent, err := s.callingRepo.RecentCallings(dashboardListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent callings: %w", err)
	}

	activity, err := s.callingRepo.RecentHistory(dashboardListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent activity: %w", err)
	}

	return &DashboardSummary{
		TotalUnits:       totalUnits,
		TotalCallings:    totalCallings,
		StatusCounts:     statusCounts,
		UpcomingReleases: upcoming,
		RecentCallings:   recent,
		RecentActivity:   activity,
	}, nil
}
