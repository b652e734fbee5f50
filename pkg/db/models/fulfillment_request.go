package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/omarhijazi/souqline-backend/pkg/db/types"
	"github.com/omarhijazi/souqline-backend/pkg/enums"
)

// FulfillmentRequest is a supplier restock request. OrderIDs lists orders
// whose processing is blocked on this restock; deciding or completing the
// request cascades status changes onto them.
type FulfillmentRequest struct {
	ID         uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	SupplierID uuid.UUID               `gorm:"column:supplier_id;type:uuid;not null"`
	Status     enums.FulfillmentStatus `gorm:"column:status;type:text;not null;default:'pending'"`

	RejectionReason    *string    `gorm:"column:rejection_reason"`
	DeliveryLocation   *string    `gorm:"column:delivery_location"`
	ExpectedDelivery   *time.Time `gorm:"column:expected_delivery"`
	ActualDeliveryDate *time.Time `gorm:"column:actual_delivery_date"`
	AdminNotes         *string    `gorm:"column:admin_notes"`

	OrderIDs dbtypes.UUIDArray `gorm:"column:order_ids;type:uuid[]"`

	Items []FulfillmentItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`

	DecidedAt *time.Time `gorm:"column:decided_at"`
	DecidedBy *uuid.UUID `gorm:"column:decided_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// FulfillmentItem is one restock line with the stock level snapshotted when
// the supplier filed the request.
type FulfillmentItem struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	RequestID    uuid.UUID `gorm:"column:request_id;type:uuid;not null;index"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Quantity     int       `gorm:"column:quantity;not null"`
	CurrentStock int       `gorm:"column:current_stock;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
