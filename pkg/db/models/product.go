package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the supplier listing whose stock this service adjusts.
// StockQuantity is the aggregate count and is kept in sync with the per-variant
// counts when HasVariants is true.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SupplierID    uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null"`
	SKU           string          `gorm:"column:sku;not null;uniqueIndex"`
	Name          string          `gorm:"column:name;not null"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CostPrice     decimal.Decimal `gorm:"column:cost_price;type:numeric(12,2);not null"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0"`
	HasVariants   bool            `gorm:"column:has_variants;not null;default:false"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`

	// ExternalID links listings imported from a storefront integration;
	// Unmatched marks synthetic records created for unknown external items.
	ExternalID *string `gorm:"column:external_id"`
	Unmatched  bool    `gorm:"column:unmatched;not null;default:false"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
