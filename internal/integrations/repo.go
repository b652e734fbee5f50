package integrations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarhijazi/souqline-backend/pkg/db/models"
)

// Repository reads and maintains storefront integration records. Lookups only
// return active integrations; inactive stores cannot authenticate.
type Repository interface {
	FindBySecret(ctx context.Context, secret string) (*models.StoreIntegration, error)
	FindByStoreID(ctx context.Context, storeID string) (*models.StoreIntegration, error)
	PersistSecret(ctx context.Context, id uuid.UUID, secret string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an integration repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindBySecret(ctx context.Context, secret string) (*models.StoreIntegration, error) {
	var integration models.StoreIntegration
	if err := r.db.WithContext(ctx).
		Where("webhook_secret = ? AND is_active = ?", secret, true).
		First(&integration).Error; err != nil {
		return nil, err
	}
	return &integration, nil
}

func (r *repository) FindByStoreID(ctx context.Context, storeID string) (*models.StoreIntegration, error) {
	var integration models.StoreIntegration
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND is_active = ?", storeID, true).
		First(&integration).Error; err != nil {
		return nil, err
	}
	return &integration, nil
}

func (r *repository) PersistSecret(ctx context.Context, id uuid.UUID, secret string) error {
	return r.db.WithContext(ctx).
		Model(&models.StoreIntegration{}).
		Where("id = ?", id).
		UpdateColumn("webhook_secret", secret).Error
}
