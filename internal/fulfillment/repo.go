package fulfillment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarhijazi/souqline-backend/pkg/db/models"
)

// Repository manages fulfillment request persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.FulfillmentRequest, error)
	Create(ctx context.Context, request *models.FulfillmentRequest) error
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a fulfillment repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.FulfillmentRequest, error) {
	var request models.FulfillmentRequest
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) Create(ctx context.Context, request *models.FulfillmentRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.FulfillmentRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}
