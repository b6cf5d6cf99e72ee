package models

import "time"

// Group is a named permission group. The capability each group carries is
// defined by the permissions package, not stored here.
type Group struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
