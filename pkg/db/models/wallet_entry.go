package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omarhijazi/souqline-backend/pkg/enums"
)

// WalletEntry records an immutable credit or debit on a user wallet tied to
// an order. Balances are derived by summing entries.
type WalletEntry struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	OrderID   uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	Type      enums.WalletEntryType `gorm:"column:type;type:text;not null"`
	Amount    decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	Reason    string                `gorm:"column:reason;not null"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}
