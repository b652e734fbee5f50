package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarhijazi/souqline-backend/pkg/db/models"
)

// Repository manages persistence for products and their variant stock counts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDWithVariants(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	FindByExternalID(ctx context.Context, externalID string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	IncrementStock(ctx context.Context, id uuid.UUID, delta int) error
	SetStock(ctx context.Context, id uuid.UUID, quantity int) error
	IncrementVariantStock(ctx context.Context, productID uuid.UUID, variantID, value string, delta int) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a product repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindByIDWithVariants(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Variants").
		First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindByExternalID(ctx context.Context, externalID string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "external_id = ?", externalID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) IncrementStock(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", delta)).Error
}

func (r *repository) SetStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock_quantity", quantity).Error
}

// IncrementVariantStock adjusts the matching variant row and reports how many
// rows matched, so callers can detect a stale variant reference.
func (r *repository) IncrementVariantStock(ctx context.Context, productID uuid.UUID, variantID, value string, delta int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("product_id = ? AND variant_id = ? AND value = ?", productID, variantID, value).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	return res.RowsAffected, res.Error
}
