package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/propscan/audit-backend/internal/logger"
	"github.com/propscan/audit-backend/internal/types"
)

type AuditRepo interface {
	Create(ctx context.Context, tx *gorm.DB, audits []*types.Audit) ([]*types.Audit, error)
	GetByID(ctx context.Context, tx *gorm.DB, auditID uuid.UUID) (*types.Audit, error)
	GetFirstByPropertyID(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) (*types.Audit, error)
}

type auditRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditRepo(db *gorm.DB, baseLog *logger.Logger) AuditRepo {
	repoLog := baseLog.With("repo", "AuditRepo")
	return &auditRepo{db: db, log: repoLog}
}

func (r *auditRepo) Create(ctx context.Context, tx *gorm.DB, audits []*types.Audit) ([]*types.Audit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(audits) == 0 {
		return []*types.Audit{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&audits).Error; err != nil {
		return nil, err
	}
	return audits, nil
}

func (r *auditRepo) GetByID(ctx context.Context, tx *gorm.DB, auditID uuid.UUID) (*types.Audit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Audit
	if err := transaction.WithContext(ctx).
		Where("id = ?", auditID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// GetFirstByPropertyID returns the earliest audit for the property. The schema
// permits many audits per property; "first" is pinned to creation order so the
// lookup stays deterministic.
func (r *auditRepo) GetFirstByPropertyID(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) (*types.Audit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Audit
	if err := transaction.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at ASC").
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
