package orders

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/omarhijazi/souqline-backend/api/responses"
	"github.com/omarhijazi/souqline-backend/api/validators"
	ordersvc "github.com/omarhijazi/souqline-backend/internal/orders"
	"github.com/omarhijazi/souqline-backend/pkg/enums"
	pkgerrors "github.com/omarhijazi/souqline-backend/pkg/errors"
	"github.com/omarhijazi/souqline-backend/pkg/logger"
)

type bulkActionRequest struct {
	OrderIDs        []string `json:"order_ids" validate:"required,min=1,dive,uuid"`
	Action          string   `json:"action" validate:"required"`
	ActorID         string   `json:"actor_id" validate:"required,uuid"`
	Reason          string   `json:"reason"`
	ShippingCompany *string  `json:"shipping_company"`
	ShippingCity    *string  `json:"shipping_city"`
	ShippingVillage *string  `json:"shipping_village"`
}

// BulkAction applies one admin action to a batch of orders and reports
// per-order outcomes.
func BulkAction(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body bulkActionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		action, err := enums.ParseOrderAction(body.Action)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action"))
			return
		}
		actorID, err := uuid.Parse(body.ActorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor id"))
			return
		}
		orderIDs := make([]uuid.UUID, 0, len(body.OrderIDs))
		for _, raw := range body.OrderIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
				return
			}
			orderIDs = append(orderIDs, id)
		}

		result, err := svc.BulkAction(ctx, ordersvc.BulkActionInput{
			OrderIDs:        orderIDs,
			Action:          action,
			ActorID:         actorID,
			Reason:          body.Reason,
			ShippingCompany: body.ShippingCompany,
			ShippingCity:    body.ShippingCity,
			ShippingVillage: body.ShippingVillage,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
