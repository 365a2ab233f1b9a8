package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/propscan/audit-backend/internal/logger"
	"github.com/propscan/audit-backend/internal/types"
)

type AuditFindingRepo interface {
	Create(ctx context.Context, tx *gorm.DB, findings []*types.AuditFinding) ([]*types.AuditFinding, error)
	GetByID(ctx context.Context, tx *gorm.DB, findingID uuid.UUID) (*types.AuditFinding, error)
	ListByStepID(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) ([]*types.AuditFinding, error)
}

type auditFindingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditFindingRepo(db *gorm.DB, baseLog *logger.Logger) AuditFindingRepo {
	repoLog := baseLog.With("repo", "AuditFindingRepo")
	return &auditFindingRepo{db: db, log: repoLog}
}

func (r *auditFindingRepo) Create(ctx context.Context, tx *gorm.DB, findings []*types.AuditFinding) ([]*types.AuditFinding, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(findings) == 0 {
		return []*types.AuditFinding{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&findings).Error; err != nil {
		return nil, err
	}
	return findings, nil
}

func (r *auditFindingRepo) GetByID(ctx context.Context, tx *gorm.DB, findingID uuid.UUID) (*types.AuditFinding, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.AuditFinding
	if err := transaction.WithContext(ctx).
		Where("id = ?", findingID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *auditFindingRepo) ListByStepID(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) ([]*types.AuditFinding, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AuditFinding
	if err := transaction.WithContext(ctx).
		Where("step_id = ?", stepID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
