package orders

import (
	"github.com/google/uuid"

	"github.com/omarhijazi/souqline-backend/pkg/enums"
)

// BulkActionInput is the admin bulk status-change request. Reason is required
// for cancel/return; the shipping fields apply to ship and update-shipping.
type BulkActionInput struct {
	OrderIDs        []uuid.UUID
	Action          enums.OrderAction
	ActorID         uuid.UUID
	Reason          string
	ShippingCompany *string
	ShippingCity    *string
	ShippingVillage *string
}

// SideEffectResult reports one best-effort step that ran alongside the
// primary mutation. OK=false means the step failed or was skipped but the
// order mutation itself stands.
type SideEffectResult struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// OrderOutcome is the per-order result of a bulk action: the primary mutation
// outcome plus every side effect that was attempted. A non-empty Error means
// the primary mutation did not happen for this order.
type OrderOutcome struct {
	OrderID     uuid.UUID          `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	Status      enums.OrderStatus  `json:"status"`
	Error       string             `json:"error,omitempty"`
	SideEffects []SideEffectResult `json:"side_effects,omitempty"`
}

// BulkActionResult wraps the per-order outcomes of one batch.
type BulkActionResult struct {
	Action   enums.OrderAction `json:"action"`
	Outcomes []OrderOutcome    `json:"outcomes"`
}

func (r *BulkActionResult) failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Error != "" {
			n++
		}
	}
	return n
}
