package models

import (
	"time"

	"gorm.io/gorm"
)

// Organization is a sub-organization within a single unit (elders quorum,
// primary, and so on).
type Organization struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	UnitID       uint64         `gorm:"not null" json:"unit_id"`
	Name         string         `gorm:"type:varchar(100);not null" json:"name"`
	Leader       string         `gorm:"type:varchar(100)" json:"leader"`
	DisplayOrder int            `gorm:"not null;default:0" json:"display_order"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Unit      Unit       `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
	Positions []Position `gorm:"foreignKey:OrganizationID" json:"positions,omitempty"`
}
