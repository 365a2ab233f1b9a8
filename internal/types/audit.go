package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Audit struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PropertyID uuid.UUID `gorm:"type:uuid;not null;index" json:"property_id"`
	Property   *Property `gorm:"constraint:OnDelete:CASCADE;foreignKey:PropertyID;references:ID" json:"property,omitempty"`

	Date        time.Time      `gorm:"column:date;not null" json:"date"`
	AuditorName string         `gorm:"column:auditor_name" json:"auditor_name,omitempty"`
	Notes       string         `gorm:"column:notes" json:"notes,omitempty"`
	Metadata    datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Audit) TableName() string { return "audit" }
