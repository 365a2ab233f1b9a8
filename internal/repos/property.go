package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/propscan/audit-backend/internal/logger"
	"github.com/propscan/audit-backend/internal/types"
)

type PropertyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, properties []*types.Property) ([]*types.Property, error)
	GetByID(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) (*types.Property, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Property, error)
	Update(ctx context.Context, tx *gorm.DB, property *types.Property) error
	UpdateFields(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID, fields map[string]interface{}) error
	DeleteByID(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) (int64, error)
}

type propertyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPropertyRepo(db *gorm.DB, baseLog *logger.Logger) PropertyRepo {
	repoLog := baseLog.With("repo", "PropertyRepo")
	return &propertyRepo{db: db, log: repoLog}
}

func (r *propertyRepo) Create(ctx context.Context, tx *gorm.DB, properties []*types.Property) ([]*types.Property, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(properties) == 0 {
		return []*types.Property{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

func (r *propertyRepo) GetByID(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) (*types.Property, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Property
	if err := transaction.WithContext(ctx).
		Where("id = ?", propertyID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *propertyRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Property, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Property
	if err := transaction.WithContext(ctx).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *propertyRepo) Update(ctx context.Context, tx *gorm.DB, property *types.Property) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(property).Error
}

func (r *propertyRepo) UpdateFields(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Property{}).
		Where("id = ?", propertyID).
		Updates(fields).Error
}

func (r *propertyRepo) DeleteByID(ctx context.Context, tx *gorm.DB, propertyID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Where("id = ?", propertyID).
		Delete(&types.Property{})
	return res.RowsAffected, res.Error
}
