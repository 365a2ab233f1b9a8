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

type CreateFindingInput struct {
	StepID         uuid.UUID
	Title          string
	Description    string
	Recommendation string
	Severity       string
	Source         string
}

type FindingService interface {
	Create(ctx context.Context, in CreateFindingInput) (*types.AuditFinding, error)
	ListByStep(ctx context.Context, stepID uuid.UUID) ([]*types.AuditFinding, error)
}

type findingService struct {
	db          *gorm.DB
	log         *logger.Logger
	findingRepo repos.AuditFindingRepo
	stepRepo    repos.AuditStepRepo
}

func NewFindingService(db *gorm.DB, baseLog *logger.Logger, findingRepo repos.AuditFindingRepo, stepRepo repos.AuditStepRepo) FindingService {
	serviceLog := baseLog.With("service", "FindingService")
	return &findingService{db: db, log: serviceLog, findingRepo: findingRepo, stepRepo: stepRepo}
}

func (fs *findingService) Create(ctx context.Context, in CreateFindingInput) (*types.AuditFinding, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: missing title", ErrValidation)
	}
	if _, err := fs.stepRepo.GetByID(ctx, nil, in.StepID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: step", ErrNotFound)
		}
		return nil, fmt.Errorf("get step: %w", err)
	}

	now := time.Now()
	finding := &types.AuditFinding{
		ID:             uuid.New(),
		StepID:         in.StepID,
		Title:          in.Title,
		Description:    in.Description,
		Recommendation: in.Recommendation,
		Severity:       in.Severity,
		Source:         in.Source,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := fs.findingRepo.Create(ctx, nil, []*types.AuditFinding{finding}); err != nil {
		fs.log.Error("Create finding failed", "step_id", in.StepID, "error", err)
		return nil, fmt.Errorf("create finding: %w", err)
	}
	fs.log.Info("Finding created", "finding_id", finding.ID, "step_id", in.StepID)
	return finding, nil
}

func (fs *findingService) ListByStep(ctx context.Context, stepID uuid.UUID) ([]*types.AuditFinding, error) {
	findings, err := fs.findingRepo.ListByStepID(ctx, nil, stepID)
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	return findings, nil
}
