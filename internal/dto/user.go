package dto

import (
	"encoding/json"
	"time"

	"github.com/jhstephenson/callingtrack/internal/models"
	"github.com/jhstephenson/callingtrack/internal/permissions"
)

// SignupRequest is the write payload for account creation
type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the write payload for login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SetGroupsRequest replaces a user's permission groups
type SetGroupsRequest struct {
	Groups []string `json:"groups" binding:"required"`
}

// UserResponse is the read payload for a user
type UserResponse struct {
	ID           uint64                    `json:"id"`
	Username     string                    `json:"username"`
	IsSuperuser  bool                      `json:"is_superuser"`
	Groups       []string                  `json:"groups"`
	Capabilities *permissions.Capabilities `json:"capabilities,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// ToUserResponse converts a user model to its response representation
func ToUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		IsSuperuser: user.IsSuperuser,
		Groups:      user.GroupNames(),
		CreatedAt:   user.CreatedAt,
	}
}

// HistoryResponse is the read payload for one history entry. The snapshot is
// passed through as stored.
type HistoryResponse struct {
	ID        uint64               `json:"id"`
	CallingID uint64               `json:"calling_id"`
	Action    models.HistoryAction `json:"action"`
	ChangedBy *uint64              `json:"changed_by"`
	ChangedAt time.Time            `json:"changed_at"`
	Notes     string               `json:"notes"`
	Snapshot  json.RawMessage      `json:"snapshot"`
}

// ToHistoryResponse converts a history entry to its response representation
func ToHistoryResponse(entry *models.CallingHistory) HistoryResponse {
	return HistoryResponse{
		ID:        entry.ID,
		CallingID: entry.CallingID,
		Action:    entry.Action,
		ChangedBy: entry.ChangedBy,
		ChangedAt: entry.ChangedAt,
		Notes:     entry.Notes,
		Snapshot:  entry.Snapshot,
	}
}

// ToHistoryResponses converts a slice of history entries
func ToHistoryResponses(entries []models.CallingHistory) []HistoryResponse {
	responses := make([]HistoryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, ToHistoryResponse(&entries[i]))
	}
	return responses
}
