package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omarhijazi/souqline-backend/api/controllers"
	fulfillmentcontrollers "github.com/omarhijazi/souqline-backend/api/controllers/fulfillment"
	ordercontrollers "github.com/omarhijazi/souqline-backend/api/controllers/orders"
	webhookcontrollers "github.com/omarhijazi/souqline-backend/api/controllers/webhooks"
	"github.com/omarhijazi/souqline-backend/api/middleware"
	"github.com/omarhijazi/souqline-backend/internal/fulfillment"
	"github.com/omarhijazi/souqline-backend/internal/integrations"
	"github.com/omarhijazi/souqline-backend/internal/orders"
	"github.com/omarhijazi/souqline-backend/internal/webhooks/easyorders"
	"github.com/omarhijazi/souqline-backend/pkg/config"
	"github.com/omarhijazi/souqline-backend/pkg/db"
	"github.com/omarhijazi/souqline-backend/pkg/logger"
	"github.com/omarhijazi/souqline-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	ordersSvc orders.Service,
	fulfillmentSvc fulfillment.Service,
	webhookSvc easyorders.Service,
	integrationsRepo integrations.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/easyorders", webhookcontrollers.EasyOrdersWebhook(webhookSvc, integrationsRepo, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/orders/bulk-action", ordercontrollers.BulkAction(ordersSvc, logg))
		r.Route("/fulfillment-requests/{id}", func(r chi.Router) {
			r.Post("/decision", fulfillmentcontrollers.Decide(fulfillmentSvc, logg))
			r.Post("/delivered", fulfillmentcontrollers.MarkDelivered(fulfillmentSvc, logg))
		})
	})

	return r
}
