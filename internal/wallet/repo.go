package wallet

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarhijazi/souqline-backend/pkg/db/models"
)

// Repository manages wallet ledger entries plus the profits_distributed flag
// on orders, which is the settlement idempotency guard.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.WalletEntry) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WalletEntry, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.WalletEntry, error)
	// SwapProfitsDistributed is an atomic compare-and-set on the order's
	// profits_distributed flag. Returns false when the flag was not in the
	// expected state, which closes the double-settlement race window.
	SwapProfitsDistributed(ctx context.Context, orderID uuid.UUID, from, to bool) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.WalletEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WalletEntry, error) {
	var entries []models.WalletEntry
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.WalletEntry, error) {
	var entries []models.WalletEntry
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) SwapProfitsDistributed(ctx context.Context, orderID uuid.UUID, from, to bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND profits_distributed = ?", orderID, from).
		UpdateColumn("profits_distributed", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
