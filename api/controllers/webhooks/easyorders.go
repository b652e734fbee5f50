package webhooks

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/omarhijazi/souqline-backend/api/responses"
	"github.com/omarhijazi/souqline-backend/internal/integrations"
	"github.com/omarhijazi/souqline-backend/internal/webhooks/easyorders"
	"github.com/omarhijazi/souqline-backend/pkg/db/models"
	pkgerrors "github.com/omarhijazi/souqline-backend/pkg/errors"
	"github.com/omarhijazi/souqline-backend/pkg/logger"
)

const secretHeader = "X-Webhook-Secret"

// EasyOrdersWebhook authenticates and ingests storefront order events. Every
// rejection is a bare unauthorized response so callers learn nothing about
// which part of the check failed.
func EasyOrdersWebhook(svc easyorders.Service, repo integrations.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		secret := r.Header.Get(secretHeader)
		if secret == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, ""))
			return
		}

		var payload easyorders.Payload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payload"))
			return
		}

		integration, err := authenticate(r, repo, secret, payload.Order.StoreID, logg)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.HandleEvent(ctx, integration, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// authenticate resolves the integration by secret, falling back to a store-id
// lookup that adopts the presented secret the first time it is seen.
func authenticate(r *http.Request, repo integrations.Repository, secret, storeID string, logg *logger.Logger) (*models.StoreIntegration, error) {
	ctx := r.Context()

	integration, err := repo.FindBySecret(ctx, secret)
	if err == nil {
		return integration, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "integration lookup")
	}

	if storeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "")
	}
	integration, err = repo.FindByStoreID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "integration lookup")
	}
	if integration.WebhookSecret != "" {
		// Store is known but the presented secret does not match its record.
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "")
	}

	if err := repo.PersistSecret(ctx, integration.ID, secret); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist webhook secret")
	}
	integration.WebhookSecret = secret
	if logg != nil {
		c := logg.WithField(ctx, "store_id", storeID)
		logg.Info(c, "webhook secret adopted for integration")
	}
	return integration, nil
}
