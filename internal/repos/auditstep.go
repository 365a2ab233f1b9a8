package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/propscan/audit-backend/internal/logger"
	"github.com/propscan/audit-backend/internal/types"
)

type AuditStepRepo interface {
	CreateOrGet(ctx context.Context, tx *gorm.DB, step *types.AuditStep) (*types.AuditStep, bool, error)
	GetByID(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) (*types.AuditStep, error)
	GetByIdentity(ctx context.Context, tx *gorm.DB, auditID uuid.UUID, stepType, label string) (*types.AuditStep, error)
	GetFirstByLabel(ctx context.Context, tx *gorm.DB, auditID uuid.UUID, label string) (*types.AuditStep, error)
	ListByAuditID(ctx context.Context, tx *gorm.DB, auditID uuid.UUID) ([]*types.AuditStep, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, stepID uuid.UUID, fields map[string]interface{}) error
}

type auditStepRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditStepRepo(db *gorm.DB, baseLog *logger.Logger) AuditStepRepo {
	repoLog := baseLog.With("repo", "AuditStepRepo")
	return &auditStepRepo{db: db, log: repoLog}
}

// CreateOrGet inserts the step under the (audit_id, step_type, label) unique
// index. On conflict the insert is a no-op and the winner's row is read back,
// so two concurrent callers always converge on one row. The bool reports
// whether this call created the row.
func (r *auditStepRepo) CreateOrGet(ctx context.Context, tx *gorm.DB, step *types.AuditStep) (*types.AuditStep, bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "audit_id"}, {Name: "step_type"}, {Name: "label"}},
			DoNothing: true,
		}).
		Create(step)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return step, true, nil
	}

	existing, err := r.GetByIdentity(ctx, transaction, step.AuditID, step.StepType, step.Label)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *auditStepRepo) GetByID(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) (*types.AuditStep, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.AuditStep
	if err := transaction.WithContext(ctx).
		Where("id = ?", stepID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *auditStepRepo) GetByIdentity(ctx context.Context, tx *gorm.DB, auditID uuid.UUID, stepType, label string) (*types.AuditStep, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.AuditStep
	if err := transaction.WithContext(ctx).
		Where("audit_id = ? AND step_type = ? AND label = ?", auditID, stepType, label).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// GetFirstByLabel resolves a step by label alone, ignoring step_type. Used by
// the by-label media listing, which predates step_type disambiguation.
func (r *auditStepRepo) GetFirstByLabel(ctx context.Context, tx *gorm.DB, auditID uuid.UUID, label string) (*types.AuditStep, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.AuditStep
	if err := transaction.WithContext(ctx).
		Where("audit_id = ? AND label = ?", auditID, label).
		Order("created_at ASC").
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *auditStepRepo) ListByAuditID(ctx context.Context, tx *gorm.DB, auditID uuid.UUID) ([]*types.AuditStep, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AuditStep
	if err := transaction.WithContext(ctx).
		Where("audit_id = ?", auditID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *auditStepRepo) UpdateFields(ctx context.Context, tx *gorm.DB, stepID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.AuditStep{}).
		Where("id = ?", stepID).
		Updates(fields).Error
}
