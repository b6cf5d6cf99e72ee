package models

import (
	"time"

	"gorm.io/gorm"
)

type Position struct {
	ID                   uint64         `gorm:"primarykey" json:"id"`
	OrganizationID       uint64         `gorm:"not null;uniqueIndex:idx_positions_org_title" json:"organization_id"`
	Title                string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_positions_org_title" json:"title"`
	IsLeadership         bool           `gorm:"not null;default:false" json:"is_leadership"`
	RequiresSettingApart bool           `gorm:"not null;default:false" json:"requires_setting_apart"`
	DisplayOrder         int            `gorm:"not null;default:0" json:"display_order"`
	IsActive             bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}
