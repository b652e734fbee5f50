package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarhijazi/souqline-backend/pkg/db/models"
	"github.com/omarhijazi/souqline-backend/pkg/enums"
)

// Repository manages order persistence. ForceSetStatus is the deliberate
// validator-bypassing write used by fulfillment cascades and the storefront
// webhook; client-requested transitions go through the orchestrator instead.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Order, error)
	FindByExternalKey(ctx context.Context, externalOrderID string, supplierID uuid.UUID) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ForceSetStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, actorID *uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id IN ?", ids).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) FindByExternalKey(ctx context.Context, externalOrderID string, supplierID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("external_order_id = ? AND supplier_id = ?", externalOrderID, supplierID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ForceSetStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, actorID *uuid.UUID) error {
	updates := map[string]any{"status": status}
	for k, v := range statusStamps(status, time.Now().UTC(), actorID) {
		updates[k] = v
	}
	return r.UpdateFields(ctx, id, updates)
}

// statusStamps returns the milestone timestamp/actor columns for a status.
func statusStamps(status enums.OrderStatus, now time.Time, actorID *uuid.UUID) map[string]any {
	stamps := map[string]any{}
	switch status {
	case enums.OrderStatusConfirmed:
		stamps["confirmed_at"] = now
		stamps["confirmed_by"] = actorID
	case enums.OrderStatusProcessing:
		stamps["processing_at"] = now
		stamps["processing_by"] = actorID
	case enums.OrderStatusShipped:
		stamps["shipped_at"] = now
		stamps["shipped_by"] = actorID
	case enums.OrderStatusDelivered:
		stamps["delivered_at"] = now
		stamps["delivered_by"] = actorID
	case enums.OrderStatusCancelled:
		stamps["cancelled_at"] = now
		stamps["cancelled_by"] = actorID
	case enums.OrderStatusReturned:
		stamps["returned_at"] = now
		stamps["returned_by"] = actorID
	}
	return stamps
}
