package main

import (
	"context"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/omarhijazi/souqline-backend/api/routes"
	"github.com/omarhijazi/souqline-backend/internal/fulfillment"
	"github.com/omarhijazi/souqline-backend/internal/integrations"
	"github.com/omarhijazi/souqline-backend/internal/inventory"
	"github.com/omarhijazi/souqline-backend/internal/notifications"
	"github.com/omarhijazi/souqline-backend/internal/ordernum"
	"github.com/omarhijazi/souqline-backend/internal/orders"
	"github.com/omarhijazi/souqline-backend/internal/packages"
	"github.com/omarhijazi/souqline-backend/internal/pricing"
	"github.com/omarhijazi/souqline-backend/internal/products"
	"github.com/omarhijazi/souqline-backend/internal/wallet"
	"github.com/omarhijazi/souqline-backend/internal/webhooks/easyorders"
	"github.com/omarhijazi/souqline-backend/pkg/config"
	"github.com/omarhijazi/souqline-backend/pkg/db"
	"github.com/omarhijazi/souqline-backend/pkg/logger"
	"github.com/omarhijazi/souqline-backend/pkg/metrics"
	"github.com/omarhijazi/souqline-backend/pkg/migrate"
	"github.com/omarhijazi/souqline-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "souqline-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "souqline-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	adminUserID, err := uuid.Parse(cfg.Settlement.AdminUserID)
	if err != nil {
		logg.Error(context.Background(), "invalid settlement admin user id", err)
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	orderMetrics := metrics.NewOrderMetrics(registry)

	productsRepo := products.NewRepository(dbClient.DB())
	productCache := products.NewCache(redisClient, cfg.Redis.ProductTTL, logg)

	adjuster, err := inventory.NewAdjuster(productsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory adjuster", err)
		os.Exit(1)
	}

	walletSvc, err := wallet.NewService(wallet.NewRepository(dbClient.DB()), dbClient, adminUserID, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	packagesSvc, err := packages.NewService(dbClient.DB(), packages.NewHTTPCarrier(cfg.Carrier), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create packages service", err)
		os.Exit(1)
	}

	notifier := notifications.NewNotifier(redisClient, logg)

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:     ordersRepo,
		Adjuster: adjuster,
		Wallet:   walletSvc,
		Packages: packagesSvc,
		Notifier: notifier,
		Metrics:  orderMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	fulfillmentSvc, err := fulfillment.NewService(
		fulfillment.NewRepository(dbClient.DB()), ordersRepo, adjuster, packagesSvc, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment service", err)
		os.Exit(1)
	}

	policy, err := pricing.NewPolicy(cfg.Pricing)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing policy", err)
		os.Exit(1)
	}

	numbers, err := ordernum.NewGenerator(dbClient, "SO")
	if err != nil {
		logg.Error(context.Background(), "failed to create order number generator", err)
		os.Exit(1)
	}

	webhookSvc, err := easyorders.NewService(easyorders.ServiceParams{
		Orders:   ordersRepo,
		Products: productsRepo,
		Cache:    productCache,
		Policy:   policy,
		Numbers:  numbers,
		Metrics:  orderMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	integrationsRepo := integrations.NewRepository(dbClient.DB())

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, dbClient, redisClient, registry,
			ordersSvc, fulfillmentSvc, webhookSvc, integrationsRepo,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
