package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is one line of an order. VariantID/VariantValue are set when the
// buyer selected a specific variant of the product.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name         string          `gorm:"column:name;not null"`
	Quantity     int             `gorm:"column:quantity;not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	VariantID    *string         `gorm:"column:variant_id"`
	VariantValue *string         `gorm:"column:variant_value"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}
