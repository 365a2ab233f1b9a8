package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/propscan/audit-backend/internal/logger"
	"github.com/propscan/audit-backend/internal/repos"
	"github.com/propscan/audit-backend/internal/types"
)

// StepPatch carries a partial update. Nil means "leave unchanged"; a non-nil
// pointer always overwrites, so an explicit false clears a prior true.
type StepPatch struct {
	IsCompleted   *bool
	NotAccessible *bool
	Notes         *string
}

// StepService owns step identity: every mutation path that addresses a step by
// (audit_id, step_type, label) goes through ResolveOrUpdate, which is what
// keeps duplicate steps from accumulating.
type StepService interface {
	ResolveOrUpdate(ctx context.Context, tx *gorm.DB, auditID uuid.UUID, stepType, label string, patch StepPatch) (*types.AuditStep, bool, error)
	SetCompletedByID(ctx context.Context, stepID uuid.UUID, isCompleted bool) (*types.AuditStep, error)
	GetByID(ctx context.Context, stepID uuid.UUID) (*types.AuditStep, error)
	ListByAudit(ctx context.Context, auditID uuid.UUID) ([]*types.AuditStep, error)
}

type stepService struct {
	db       *gorm.DB
	log      *logger.Logger
	stepRepo repos.AuditStepRepo
}

func NewStepService(db *gorm.DB, baseLog *logger.Logger, stepRepo repos.AuditStepRepo) StepService {
	serviceLog := baseLog.With("service", "StepService")
	return &stepService{db: db, log: serviceLog, stepRepo: stepRepo}
}

func (ss *stepService) ResolveOrUpdate(ctx context.Context, tx *gorm.DB, auditID uuid.UUID, stepType, label string, patch StepPatch) (*types.AuditStep, bool, error) {
	stepType = strings.TrimSpace(stepType)
	label = strings.TrimSpace(label)
	if stepType == "" || label == "" {
		return nil, false, fmt.Errorf("%w: missing step_type or label", ErrValidation)
	}

	now := time.Now()
	candidate := &types.AuditStep{
		ID:        uuid.New(),
		AuditID:   auditID,
		StepType:  stepType,
		Label:     label,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if patch.IsCompleted != nil {
		candidate.IsCompleted = *patch.IsCompleted
	}
	if patch.NotAccessible != nil {
		candidate.NotAccessible = *patch.NotAccessible
	}
	if patch.Notes != nil {
		candidate.Notes = *patch.Notes
	}

	step, created, err := ss.stepRepo.CreateOrGet(ctx, tx, candidate)
	if err != nil {
		ss.log.Error("ResolveOrUpdate failed", "audit_id", auditID, "step_type", stepType, "label", label, "error", err)
		return nil, false, fmt.Errorf("resolve step: %w", err)
	}
	if created {
		ss.log.Info("Step created", "audit_id", auditID, "step_type", stepType, "label", label, "step_id", step.ID)
		return step, true, nil
	}

	// Merge only the fields the caller actually provided.
	fields := map[string]interface{}{}
	if patch.IsCompleted != nil {
		fields["is_completed"] = *patch.IsCompleted
		step.IsCompleted = *patch.IsCompleted
	}
	if patch.NotAccessible != nil {
		fields["not_accessible"] = *patch.NotAccessible
		step.NotAccessible = *patch.NotAccessible
	}
	if patch.Notes != nil {
		fields["notes"] = *patch.Notes
		step.Notes = *patch.Notes
	}
	if len(fields) > 0 {
		fields["updated_at"] = now
		if err := ss.stepRepo.UpdateFields(ctx, tx, step.ID, fields); err != nil {
			ss.log.Error("ResolveOrUpdate update failed", "step_id", step.ID, "error", err)
			return nil, false, fmt.Errorf("update step: %w", err)
		}
		step.UpdatedAt = now
	}
	return step, false, nil
}

func (ss *stepService) SetCompletedByID(ctx context.Context, stepID uuid.UUID, isCompleted bool) (*types.AuditStep, error) {
	step, err := ss.stepRepo.GetByID(ctx, nil, stepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: step", ErrNotFound)
		}
		return nil, fmt.Errorf("get step: %w", err)
	}
	now := time.Now()
	if err := ss.stepRepo.UpdateFields(ctx, nil, step.ID, map[string]interface{}{
		"is_completed": isCompleted,
		"updated_at":   now,
	}); err != nil {
		return nil, fmt.Errorf("update step: %w", err)
	}
	step.IsCompleted = isCompleted
	step.UpdatedAt = now
	return step, nil
}

func (ss *stepService) GetByID(ctx context.Context, stepID uuid.UUID) (*types.AuditStep, error) {
	step, err := ss.stepRepo.GetByID(ctx, nil, stepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: step", ErrNotFound)
		}
		return nil, fmt.Errorf("get step: %w", err)
	}
	return step, nil
}

func (ss *stepService) ListByAudit(ctx context.Context, auditID uuid.UUID) ([]*types.AuditStep, error) {
	steps, err := ss.stepRepo.ListByAuditID(ctx, nil, auditID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	return steps, nil
}
