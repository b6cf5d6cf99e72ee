package models

import (
	"encoding/json"
	"time"
)

type HistoryAction string

const (
	HistoryActionCreated       HistoryAction = "CREATED"
	HistoryActionUpdated       HistoryAction = "UPDATED"
	HistoryActionStatusChanged HistoryAction = "STATUS_CHANGED"
	HistoryActionDeleted       HistoryAction = "DELETED"
)

// CallingHistory is an append-only audit record. The snapshot holds the
// complete resolved calling state at the moment of the action, so any past
// state can be read from a single entry. Entries survive deletion of the
// calling they document; there is deliberately no foreign key constraint on
// CallingID.
type CallingHistory struct {
	ID        uint64          `gorm:"primarykey" json:"id"`
	CallingID uint64          `gorm:"not null;index" json:"calling_id"`
	Action    HistoryAction   `gorm:"type:varchar(15);not null" json:"action"`
	ChangedBy *uint64         `json:"changed_by"`
	ChangedAt time.Time       `gorm:"not null;index" json:"changed_at"`
	Notes     string          `gorm:"type:text" json:"notes"`
	Snapshot  json.RawMessage `gorm:"type:jsonb;not null" json:"snapshot"`
}
