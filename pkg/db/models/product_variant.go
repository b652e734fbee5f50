package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductVariant is one selectable option of a product with its own stock
// count. A variant is addressed by the (VariantID, Value) pair carried on
// order lines.
type ProductVariant struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	VariantID     string    `gorm:"column:variant_id;not null"`
	Value         string    `gorm:"column:value;not null"`
	StockQuantity int       `gorm:"column:stock_quantity;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
