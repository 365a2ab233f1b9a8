package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/propscan/audit-backend/internal/logger"
	"github.com/propscan/audit-backend/internal/repos"
	"github.com/propscan/audit-backend/internal/types"
)

type PropertyInput struct {
	Street    string
	City      string
	State     string
	ZipCode   string
	YearBuilt int
	Sqft      *int
}

type PropertyService interface {
	List(ctx context.Context) ([]*types.Property, error)
	Create(ctx context.Context, in PropertyInput) (*types.Property, error)
	Get(ctx context.Context, propertyID uuid.UUID) (*types.Property, error)
	Update(ctx context.Context, propertyID uuid.UUID, in PropertyInput) (*types.Property, error)
	Delete(ctx context.Context, propertyID uuid.UUID) error
	UploadUtilityBill(ctx context.Context, propertyID uuid.UUID, fileName string, file io.Reader) (*types.Property, error)
}

type propertyService struct {
	db            *gorm.DB
	log           *logger.Logger
	propertyRepo  repos.PropertyRepo
	bucketService BucketService
	bucketPrivate bool
	signedURLTTL  time.Duration
}

func NewPropertyService(
	db *gorm.DB,
	baseLog *logger.Logger,
	propertyRepo repos.PropertyRepo,
	bucketService BucketService,
	bucketPrivate bool,
	signedURLTTL time.Duration,
) PropertyService {
	serviceLog := baseLog.With("service", "PropertyService")
	if signedURLTTL <= 0 {
		signedURLTTL = time.Hour
	}
	return &propertyService{
		db:            db,
		log:           serviceLog,
		propertyRepo:  propertyRepo,
		bucketService: bucketService,
		bucketPrivate: bucketPrivate,
		signedURLTTL:  signedURLTTL,
	}
}

func (ps *propertyService) List(ctx context.Context) ([]*types.Property, error) {
	properties, err := ps.propertyRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return properties, nil
}

func (ps *propertyService) Create(ctx context.Context, in PropertyInput) (*types.Property, error) {
	now := time.Now()
	property := &types.Property{
		ID:        uuid.New(),
		Street:    in.Street,
		City:      in.City,
		State:     in.State,
		ZipCode:   in.ZipCode,
		YearBuilt: in.YearBuilt,
		Sqft:      in.Sqft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := ps.propertyRepo.Create(ctx, nil, []*types.Property{property}); err != nil {
		ps.log.Error("Create property failed", "error", err)
		return nil, fmt.Errorf("create property: %w", err)
	}
	ps.log.Info("Property created", "property_id", property.ID)
	return property, nil
}

func (ps *propertyService) Get(ctx context.Context, propertyID uuid.UUID) (*types.Property, error) {
	property, err := ps.propertyRepo.GetByID(ctx, nil, propertyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: property", ErrNotFound)
		}
		return nil, fmt.Errorf("get property: %w", err)
	}
	return property, nil
}

func (ps *propertyService) Update(ctx context.Context, propertyID uuid.UUID, in PropertyInput) (*types.Property, error) {
	property, err := ps.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	property.Street = in.Street
	property.City = in.City
	property.State = in.State
	property.ZipCode = in.ZipCode
	property.YearBuilt = in.YearBuilt
	property.Sqft = in.Sqft
	property.UpdatedAt = time.Now()
	if err := ps.propertyRepo.Update(ctx, nil, property); err != nil {
		ps.log.Error("Update property failed", "property_id", propertyID, "error", err)
		return nil, fmt.Errorf("update property: %w", err)
	}
	return property, nil
}

// Delete removes the property; audits, steps, media and findings go with it
// through the record store's cascades.
func (ps *propertyService) Delete(ctx context.Context, propertyID uuid.UUID) error {
	affected, err := ps.propertyRepo.DeleteByID(ctx, nil, propertyID)
	if err != nil {
		ps.log.Error("Delete property failed", "property_id", propertyID, "error", err)
		return fmt.Errorf("delete property: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: property", ErrNotFound)
	}
	ps.log.Info("Property deleted", "property_id", propertyID)
	return nil
}

func (ps *propertyService) UploadUtilityBill(ctx context.Context, propertyID uuid.UUID, fileName string, file io.Reader) (*types.Property, error) {
	if file == nil {
		return nil, fmt.Errorf("%w: no file uploaded", ErrValidation)
	}
	property, err := ps.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")
	key := fmt.Sprintf("utility-bills/%s/%s_%s", propertyID, suffix, sanitizeKeyPart(fileName))
	if err := ps.bucketService.UploadFile(ctx, key, file); err != nil {
		ps.log.Error("Utility bill upload failed", "property_id", propertyID, "key", key, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	billURL := key
	if !ps.bucketPrivate {
		billURL = ps.bucketService.GetPublicURL(key)
	}

	// url and name are set together, always.
	if err := ps.propertyRepo.UpdateFields(ctx, nil, propertyID, map[string]interface{}{
		"utility_bill_url":  billURL,
		"utility_bill_name": fileName,
		"updated_at":        time.Now(),
	}); err != nil {
		ps.log.Error("Persisting utility bill failed", "property_id", propertyID, "error", err)
		return nil, fmt.Errorf("persist utility bill: %w", err)
	}
	property.UtilityBillURL = billURL
	property.UtilityBillName = fileName
	ps.log.Info("Utility bill uploaded", "property_id", propertyID, "key", key)
	return property, nil
}
