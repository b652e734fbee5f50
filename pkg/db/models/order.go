package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omarhijazi/souqline-backend/pkg/enums"
)

// Order is the marketplace order moving through the status lifecycle.
// Status is only ever written through the orchestrator; ProfitsDistributed
// guards wallet settlement against double credit/debit.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber string            `gorm:"column:order_number;not null;uniqueIndex"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`

	SupplierID uuid.UUID  `gorm:"column:supplier_id;type:uuid;not null"`
	CustomerID uuid.UUID  `gorm:"column:customer_id;type:uuid;not null"`
	PackageID  *uuid.UUID `gorm:"column:package_id;type:uuid"`

	Subtotal       decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	ShippingCost   decimal.Decimal `gorm:"column:shipping_cost;type:numeric(12,2);not null"`
	Commission     decimal.Decimal `gorm:"column:commission;type:numeric(12,2);not null"`
	MarketerProfit decimal.Decimal `gorm:"column:marketer_profit;type:numeric(12,2);not null"`
	Total          decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`

	ProfitsDistributed bool `gorm:"column:profits_distributed;not null;default:false"`

	ShippingCompany *string `gorm:"column:shipping_company"`
	ShippingCity    *string `gorm:"column:shipping_city"`
	ShippingVillage *string `gorm:"column:shipping_village"`

	ExternalOrderID *string `gorm:"column:external_order_id"`
	ExternalStoreID *string `gorm:"column:external_store_id"`

	ConfirmedAt  *time.Time `gorm:"column:confirmed_at"`
	ConfirmedBy  *uuid.UUID `gorm:"column:confirmed_by;type:uuid"`
	ProcessingAt *time.Time `gorm:"column:processing_at"`
	ProcessingBy *uuid.UUID `gorm:"column:processing_by;type:uuid"`
	ShippedAt    *time.Time `gorm:"column:shipped_at"`
	ShippedBy    *uuid.UUID `gorm:"column:shipped_by;type:uuid"`
	DeliveredAt  *time.Time `gorm:"column:delivered_at"`
	DeliveredBy  *uuid.UUID `gorm:"column:delivered_by;type:uuid"`
	CancelledAt  *time.Time `gorm:"column:cancelled_at"`
	CancelledBy  *uuid.UUID `gorm:"column:cancelled_by;type:uuid"`
	CancelReason *string    `gorm:"column:cancel_reason"`
	ReturnedAt   *time.Time `gorm:"column:returned_at"`
	ReturnedBy   *uuid.UUID `gorm:"column:returned_by;type:uuid"`
	ReturnReason *string    `gorm:"column:return_reason"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
