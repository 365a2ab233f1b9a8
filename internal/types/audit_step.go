package types

import (
	"time"

	"github.com/google/uuid"
)

// AuditStep is identified by the (audit_id, step_type, label) triple; the
// surrogate id exists for direct lookups only. The unique index is what lets
// concurrent resolve-or-create calls converge on a single row.
type AuditStep struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AuditID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_audit_step_identity" json:"audit_id"`
	Audit   *Audit    `gorm:"constraint:OnDelete:CASCADE;foreignKey:AuditID;references:ID" json:"audit,omitempty"`

	StepType string `gorm:"column:step_type;not null;uniqueIndex:idx_audit_step_identity" json:"step_type"`
	Label    string `gorm:"column:label;not null;uniqueIndex:idx_audit_step_identity" json:"label"`

	IsCompleted   bool   `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
	NotAccessible bool   `gorm:"column:not_accessible;not null;default:false" json:"not_accessible"`
	Notes         string `gorm:"column:notes" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (AuditStep) TableName() string { return "audit_step" }
