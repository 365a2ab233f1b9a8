package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/propscan/audit-backend/internal/logger"
	"github.com/propscan/audit-backend/internal/repos"
	"github.com/propscan/audit-backend/internal/types"
)

type CreateAuditInput struct {
	PropertyID  uuid.UUID
	Date        *time.Time
	AuditorName string
	Notes       string
	Metadata    datatypes.JSON
}

// AuditView is the minimal read model: audit scalars plus ordered steps,
// without nested media. The step listing endpoint carries media.
type AuditView struct {
	*types.Audit
	Steps []*types.AuditStep `json:"steps"`
}

type StepWithMedia struct {
	*types.AuditStep
	Media []*MediaView `json:"media"`
}

type AuditService interface {
	Create(ctx context.Context, in CreateAuditInput) (*types.Audit, error)
	Get(ctx context.Context, auditID uuid.UUID) (*AuditView, error)
	GetByProperty(ctx context.Context, propertyID uuid.UUID) (*AuditView, error)
	ListStepsWithMedia(ctx context.Context, auditID uuid.UUID) ([]*StepWithMedia, error)
}

type auditService struct {
	db           *gorm.DB
	log          *logger.Logger
	auditRepo    repos.AuditRepo
	stepRepo     repos.AuditStepRepo
	propertyRepo repos.PropertyRepo
	mediaService MediaService
}

func NewAuditService(
	db *gorm.DB,
	baseLog *logger.Logger,
	auditRepo repos.AuditRepo,
	stepRepo repos.AuditStepRepo,
	propertyRepo repos.PropertyRepo,
	mediaService MediaService,
) AuditService {
	serviceLog := baseLog.With("service", "AuditService")
	return &auditService{
		db:           db,
		log:          serviceLog,
		auditRepo:    auditRepo,
		stepRepo:     stepRepo,
		propertyRepo: propertyRepo,
		mediaService: mediaService,
	}
}

func (as *auditService) Create(ctx context.Context, in CreateAuditInput) (*types.Audit, error) {
	if in.PropertyID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing property_id", ErrValidation)
	}
	if _, err := as.propertyRepo.GetByID(ctx, nil, in.PropertyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: property", ErrNotFound)
		}
		return nil, fmt.Errorf("get property: %w", err)
	}

	now := time.Now()
	date := now
	if in.Date != nil {
		date = *in.Date
	}
	audit := &types.Audit{
		ID:          uuid.New(),
		PropertyID:  in.PropertyID,
		Date:        date,
		AuditorName: in.AuditorName,
		Notes:       in.Notes,
		Metadata:    in.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := as.auditRepo.Create(ctx, nil, []*types.Audit{audit}); err != nil {
		as.log.Error("Create audit failed", "property_id", in.PropertyID, "error", err)
		return nil, fmt.Errorf("create audit: %w", err)
	}
	as.log.Info("Audit created", "audit_id", audit.ID, "property_id", in.PropertyID)
	return audit, nil
}

func (as *auditService) Get(ctx context.Context, auditID uuid.UUID) (*AuditView, error) {
	audit, err := as.auditRepo.GetByID(ctx, nil, auditID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: audit", ErrNotFound)
		}
		return nil, fmt.Errorf("get audit: %w", err)
	}
	return as.assembleView(ctx, audit)
}

func (as *auditService) GetByProperty(ctx context.Context, propertyID uuid.UUID) (*AuditView, error) {
	audit, err := as.auditRepo.GetFirstByPropertyID(ctx, nil, propertyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: audit", ErrNotFound)
		}
		return nil, fmt.Errorf("get audit: %w", err)
	}
	return as.assembleView(ctx, audit)
}

func (as *auditService) assembleView(ctx context.Context, audit *types.Audit) (*AuditView, error) {
	steps, err := as.stepRepo.ListByAuditID(ctx, nil, audit.ID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	return &AuditView{Audit: audit, Steps: steps}, nil
}

func (as *auditService) ListStepsWithMedia(ctx context.Context, auditID uuid.UUID) ([]*StepWithMedia, error) {
	steps, err := as.stepRepo.ListByAuditID(ctx, nil, auditID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	stepIDs := make([]uuid.UUID, len(steps))
	for i, s := range steps {
		stepIDs[i] = s.ID
	}
	media, err := as.mediaService.ListByStepIDs(ctx, stepIDs)
	if err != nil {
		return nil, err
	}
	byStep := map[uuid.UUID][]*MediaView{}
	for _, m := range media {
		if m.StepID == nil {
			continue
		}
		byStep[*m.StepID] = append(byStep[*m.StepID], m)
	}
	out := make([]*StepWithMedia, len(steps))
	for i, s := range steps {
		nested := byStep[s.ID]
		if nested == nil {
			nested = []*MediaView{}
		}
		out[i] = &StepWithMedia{AuditStep: s, Media: nested}
	}
	return out, nil
}
