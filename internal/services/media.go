package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/propscan/audit-backend/internal/logger"
	"github.com/propscan/audit-backend/internal/repos"
	"github.com/propscan/audit-backend/internal/types"
)

const (
	DefaultStepType  = "exterior"
	DefaultMediaType = "photo"
)

type AttachInput struct {
	AuditID   uuid.UUID
	StepType  string
	Label     string
	MediaType string
	FileName  string
	File      io.Reader
}

// MediaView is an AuditMedia row plus the client-usable locator: the stable
// public URL in public-bucket mode, a freshly signed URL in private mode.
type MediaView struct {
	*types.AuditMedia
	URL string `json:"url"`
}

type MediaService interface {
	Attach(ctx context.Context, in AttachInput) (*MediaView, error)
	AttachToStep(ctx context.Context, stepID uuid.UUID, mediaType, fileName string, file io.Reader) (*MediaView, error)
	ListByAudit(ctx context.Context, auditID uuid.UUID) ([]*MediaView, error)
	ListByStepLabel(ctx context.Context, auditID uuid.UUID, label string) ([]*MediaView, error)
	ListByStepIDs(ctx context.Context, stepIDs []uuid.UUID) ([]*MediaView, error)
	Locator(media *types.AuditMedia) (string, error)
}

type mediaService struct {
	db            *gorm.DB
	log           *logger.Logger
	mediaRepo     repos.AuditMediaRepo
	stepRepo      repos.AuditStepRepo
	stepService   StepService
	bucketService BucketService
	bucketPrivate bool
	signedURLTTL  time.Duration
}

func NewMediaService(
	db *gorm.DB,
	baseLog *logger.Logger,
	mediaRepo repos.AuditMediaRepo,
	stepRepo repos.AuditStepRepo,
	stepService StepService,
	bucketService BucketService,
	bucketPrivate bool,
	signedURLTTL time.Duration,
) MediaService {
	serviceLog := baseLog.With("service", "MediaService")
	if signedURLTTL <= 0 {
		signedURLTTL = time.Hour
	}
	return &mediaService{
		db:            db,
		log:           serviceLog,
		mediaRepo:     mediaRepo,
		stepRepo:      stepRepo,
		stepService:   stepService,
		bucketService: bucketService,
		bucketPrivate: bucketPrivate,
		signedURLTTL:  signedURLTTL,
	}
}

func (ms *mediaService) Attach(ctx context.Context, in AttachInput) (*MediaView, error) {
	if in.File == nil {
		return nil, fmt.Errorf("%w: no file uploaded", ErrValidation)
	}
	if strings.TrimSpace(in.StepType) == "" {
		in.StepType = DefaultStepType
	}
	if strings.TrimSpace(in.MediaType) == "" {
		in.MediaType = DefaultMediaType
	}

	// Resolve the step before anything touches storage so the media row can
	// never end up orphaned from its step.
	step, _, err := ms.stepService.ResolveOrUpdate(ctx, nil, in.AuditID, in.StepType, in.Label, StepPatch{})
	if err != nil {
		return nil, err
	}

	return ms.attach(ctx, step, in.MediaType, in.FileName, in.File)
}

func (ms *mediaService) AttachToStep(ctx context.Context, stepID uuid.UUID, mediaType, fileName string, file io.Reader) (*MediaView, error) {
	if file == nil {
		return nil, fmt.Errorf("%w: no file uploaded", ErrValidation)
	}
	if strings.TrimSpace(mediaType) == "" {
		mediaType = DefaultMediaType
	}
	step, err := ms.stepRepo.GetByID(ctx, nil, stepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: step", ErrNotFound)
		}
		return nil, fmt.Errorf("get step: %w", err)
	}
	return ms.attach(ctx, step, mediaType, fileName, file)
}

// attach is the single storage-then-metadata path. The object write happens
// first; if the metadata write fails afterwards the blob is an accepted leak.
func (ms *mediaService) attach(ctx context.Context, step *types.AuditStep, mediaType, fileName string, file io.Reader) (*MediaView, error) {
	key := deriveStorageKey(mediaType, step.AuditID, step.Label, fileName)

	if err := ms.bucketService.UploadFile(ctx, key, file); err != nil {
		ms.log.Error("Media upload failed", "audit_id", step.AuditID, "step_id", step.ID, "key", key, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	mediaURL := key
	if !ms.bucketPrivate {
		mediaURL = ms.bucketService.GetPublicURL(key)
	}

	now := time.Now()
	stepID := step.ID
	media := &types.AuditMedia{
		ID:        uuid.New(),
		AuditID:   step.AuditID,
		StepID:    &stepID,
		StepType:  step.StepType,
		Side:      deriveSide(step.Label),
		MediaURL:  mediaURL,
		FileName:  fileName,
		MediaType: mediaType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := ms.mediaRepo.Create(ctx, nil, []*types.AuditMedia{media}); err != nil {
		ms.log.Error("Media record create failed after storage write", "key", key, "error", err)
		return nil, fmt.Errorf("create media record: %w", err)
	}

	locator, err := ms.Locator(media)
	if err != nil {
		return nil, err
	}
	ms.log.Info("Media attached", "audit_id", step.AuditID, "step_id", step.ID, "media_id", media.ID, "key", key)
	return &MediaView{AuditMedia: media, URL: locator}, nil
}

func (ms *mediaService) ListByAudit(ctx context.Context, auditID uuid.UUID) ([]*MediaView, error) {
	media, err := ms.mediaRepo.ListByAuditID(ctx, nil, auditID)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	return ms.toViews(media)
}

// ListByStepLabel resolves the step by label alone (first match, step_type
// ignored) and returns its media with fresh locators.
func (ms *mediaService) ListByStepLabel(ctx context.Context, auditID uuid.UUID, label string) ([]*MediaView, error) {
	step, err := ms.stepRepo.GetFirstByLabel(ctx, nil, auditID, label)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: step", ErrNotFound)
		}
		return nil, fmt.Errorf("get step: %w", err)
	}
	media, err := ms.mediaRepo.ListByStepID(ctx, nil, step.ID)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	return ms.toViews(media)
}

func (ms *mediaService) ListByStepIDs(ctx context.Context, stepIDs []uuid.UUID) ([]*MediaView, error) {
	media, err := ms.mediaRepo.ListByStepIDs(ctx, nil, stepIDs)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	return ms.toViews(media)
}

func (ms *mediaService) Locator(media *types.AuditMedia) (string, error) {
	if !ms.bucketPrivate {
		return media.MediaURL, nil
	}
	url, err := ms.bucketService.SignURL(media.MediaURL, ms.signedURLTTL)
	if err != nil {
		ms.log.Error("Signing media URL failed", "media_id", media.ID, "error", err)
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return url, nil
}

func (ms *mediaService) toViews(media []*types.AuditMedia) ([]*MediaView, error) {
	views := make([]*MediaView, 0, len(media))
	for _, m := range media {
		locator, err := ms.Locator(m)
		if err != nil {
			return nil, err
		}
		views = append(views, &MediaView{AuditMedia: m, URL: locator})
	}
	return views, nil
}

// deriveStorageKey builds {media_type}/{audit_id}/{label}_{uuidhex}{ext}. The
// random suffix makes same-filename re-uploads accumulate instead of
// overwriting history.
func deriveStorageKey(mediaType string, auditID uuid.UUID, label, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%s/%s/%s_%s%s",
		sanitizeKeyPart(mediaType), auditID, sanitizeKeyPart(label), suffix, sanitizeKeyPart(ext))
}

// sanitizeKeyPart keeps storage keys filesystem-safe.
func sanitizeKeyPart(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// deriveSide strips a trailing "Side" token: "North Side" -> "North". It is a
// presentation convenience, never a second source of truth for the label.
func deriveSide(label string) string {
	trimmed := strings.TrimSpace(label)
	if strings.HasSuffix(trimmed, "Side") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "Side"))
	}
	return trimmed
}
