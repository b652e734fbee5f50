package models

import (
	"time"

	"github.com/google/uuid"
)

// ShippingPackage is the carrier package created for an order at (or before)
// ship time. APISuccess records whether the carrier registration call went
// through; the package row exists either way.
type ShippingPackage struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	TrackingNumber *string   `gorm:"column:tracking_number"`
	APISuccess     bool      `gorm:"column:api_success;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
