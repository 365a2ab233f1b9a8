package types

import (
	"time"

	"github.com/google/uuid"
)

type AuditFinding struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StepID uuid.UUID  `gorm:"type:uuid;not null;index" json:"step_id"`
	Step   *AuditStep `gorm:"constraint:OnDelete:CASCADE;foreignKey:StepID;references:ID" json:"step,omitempty"`

	Title          string `gorm:"column:title;not null" json:"title"`
	Description    string `gorm:"column:description" json:"description"`
	Recommendation string `gorm:"column:recommendation" json:"recommendation"`
	Severity       string `gorm:"column:severity" json:"severity"`
	Source         string `gorm:"column:source" json:"source"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (AuditFinding) TableName() string { return "audit_finding" }
