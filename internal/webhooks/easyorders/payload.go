package easyorders

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Ref normalizes the provider's loose reference fields, which arrive either as
// a bare id string or as a populated object carrying "id" or "_id". Every
// reference read goes through this one type instead of ad-hoc shape checks.
type Ref struct {
	ID string
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		r.ID = id
		return nil
	}
	var populated struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &populated); err != nil {
		return err
	}
	r.ID = populated.ID
	if r.ID == "" {
		r.ID = populated.MongoID
	}
	return nil
}

func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

// ItemPayload is one provider line item. Price is the storefront (marketer)
// price, not the supplier cost.
type ItemPayload struct {
	SKU          string          `json:"sku"`
	ProductID    Ref             `json:"product_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	VariantID    *string         `json:"variant_id,omitempty"`
	VariantValue *string         `json:"variant_value,omitempty"`
}

// OrderPayload is the provider's order snapshot.
type OrderPayload struct {
	ID           Ref             `json:"id"`
	StoreID      string          `json:"store_id"`
	Status       string          `json:"status"`
	Customer     Ref             `json:"customer"`
	Items        []ItemPayload   `json:"items"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
}

// Payload is the inbound webhook envelope, dispatched on EventType.
type Payload struct {
	EventType string       `json:"event_type"`
	Order     OrderPayload `json:"order"`
}
