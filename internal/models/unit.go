package models

import (
	"time"

	"gorm.io/gorm"
)

type UnitType string

const (
	UnitTypeWard   UnitType = "WARD"
	UnitTypeBranch UnitType = "BRANCH"
	UnitTypeStake  UnitType = "STAKE"
)

// Unit is a node in the stake/ward/branch hierarchy. A unit may reference a
// parent unit; the service layer refuses cycles.
type Unit struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"type:varchar(100);not null" json:"name"`
	UnitType     UnitType       `gorm:"type:varchar(10);not null" json:"unit_type"`
	ParentUnitID *uint64        `json:"parent_unit_id"`
	DisplayOrder int            `gorm:"not null;default:0" json:"display_order"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	ParentUnit    *Unit          `gorm:"foreignKey:ParentUnitID" json:"parent_unit,omitempty"`
	Organizations []Organization `gorm:"foreignKey:UnitID" json:"organizations,omitempty"`
}
