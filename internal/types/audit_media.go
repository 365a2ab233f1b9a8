package types

import (
	"time"

	"github.com/google/uuid"
)

// AuditMedia.MediaURL holds the storage key when the bucket is private and a
// stable public URL when it is public; read paths mint signed URLs for the
// former at response time.
type AuditMedia struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AuditID uuid.UUID `gorm:"type:uuid;not null;index" json:"audit_id"`
	Audit   *Audit    `gorm:"constraint:OnDelete:CASCADE;foreignKey:AuditID;references:ID" json:"audit,omitempty"`

	// Nullable for legacy direct-upload rows; the attach path always sets it.
	StepID *uuid.UUID `gorm:"type:uuid;index" json:"step_id,omitempty"`
	Step   *AuditStep `gorm:"constraint:OnDelete:CASCADE;foreignKey:StepID;references:ID" json:"step,omitempty"`

	StepType string `gorm:"column:step_type" json:"step_type"`
	// Presentation convenience derived from the step label ("North Side" -> "North").
	Side      string `gorm:"column:side" json:"side"`
	MediaURL  string `gorm:"column:media_url;not null" json:"media_url"`
	FileName  string `gorm:"column:file_name" json:"file_name"`
	MediaType string `gorm:"column:media_type;not null;default:'photo'" json:"media_type"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (AuditMedia) TableName() string { return "audit_media" }
