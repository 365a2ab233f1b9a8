package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/propscan/audit-backend/internal/logger"
	"github.com/propscan/audit-backend/internal/types"
)

type AuditMediaRepo interface {
	Create(ctx context.Context, tx *gorm.DB, media []*types.AuditMedia) ([]*types.AuditMedia, error)
	GetByID(ctx context.Context, tx *gorm.DB, mediaID uuid.UUID) (*types.AuditMedia, error)
	ListByAuditID(ctx context.Context, tx *gorm.DB, auditID uuid.UUID) ([]*types.AuditMedia, error)
	ListByStepID(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) ([]*types.AuditMedia, error)
	ListByStepIDs(ctx context.Context, tx *gorm.DB, stepIDs []uuid.UUID) ([]*types.AuditMedia, error)
}

type auditMediaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditMediaRepo(db *gorm.DB, baseLog *logger.Logger) AuditMediaRepo {
	repoLog := baseLog.With("repo", "AuditMediaRepo")
	return &auditMediaRepo{db: db, log: repoLog}
}

func (r *auditMediaRepo) Create(ctx context.Context, tx *gorm.DB, media []*types.AuditMedia) ([]*types.AuditMedia, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(media) == 0 {
		return []*types.AuditMedia{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&media).Error; err != nil {
		return nil, err
	}
	return media, nil
}

func (r *auditMediaRepo) GetByID(ctx context.Context, tx *gorm.DB, mediaID uuid.UUID) (*types.AuditMedia, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.AuditMedia
	if err := transaction.WithContext(ctx).
		Where("id = ?", mediaID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *auditMediaRepo) ListByAuditID(ctx context.Context, tx *gorm.DB, auditID uuid.UUID) ([]*types.AuditMedia, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AuditMedia
	if err := transaction.WithContext(ctx).
		Where("audit_id = ?", auditID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *auditMediaRepo) ListByStepID(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) ([]*types.AuditMedia, error) {
	return r.ListByStepIDs(ctx, tx, []uuid.UUID{stepID})
}

func (r *auditMediaRepo) ListByStepIDs(ctx context.Context, tx *gorm.DB, stepIDs []uuid.UUID) ([]*types.AuditMedia, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AuditMedia
	if len(stepIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("step_id IN ?", stepIDs).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
