package fulfillment

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/omarhijazi/souqline-backend/api/responses"
	"github.com/omarhijazi/souqline-backend/api/validators"
	fulfillmentsvc "github.com/omarhijazi/souqline-backend/internal/fulfillment"
	"github.com/omarhijazi/souqline-backend/pkg/enums"
	pkgerrors "github.com/omarhijazi/souqline-backend/pkg/errors"
	"github.com/omarhijazi/souqline-backend/pkg/logger"
)

type decisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	ActorID  string `json:"actor_id" validate:"required,uuid"`
	Reason   string `json:"reason"`
	Notes    string `json:"notes"`
}

type deliveredRequest struct {
	ActorID     string     `json:"actor_id" validate:"required,uuid"`
	DeliveredAt *time.Time `json:"delivered_at"`
}

// Decide approves or rejects a pending restock request.
func Decide(svc fulfillmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		requestID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request id"))
			return
		}

		var body decisionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		actorID, err := uuid.Parse(body.ActorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor id"))
			return
		}

		result, err := svc.Decide(ctx, fulfillmentsvc.DecisionInput{
			RequestID: requestID,
			Decision:  enums.FulfillmentStatus(body.Decision),
			ActorID:   actorID,
			Reason:    body.Reason,
			Notes:     body.Notes,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// MarkDelivered records the physical restock delivery and cascades linked
// orders toward shipping.
func MarkDelivered(svc fulfillmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		requestID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request id"))
			return
		}

		var body deliveredRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		actorID, err := uuid.Parse(body.ActorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor id"))
			return
		}

		deliveredAt := time.Time{}
		if body.DeliveredAt != nil {
			deliveredAt = *body.DeliveredAt
		}

		result, err := svc.MarkDelivered(ctx, requestID, deliveredAt, actorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
