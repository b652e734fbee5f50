package easyorders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omarhijazi/souqline-backend/internal/ordernum"
	"github.com/omarhijazi/souqline-backend/internal/orders"
	"github.com/omarhijazi/souqline-backend/internal/pricing"
	"github.com/omarhijazi/souqline-backend/internal/products"
	"github.com/omarhijazi/souqline-backend/pkg/db"
	"github.com/omarhijazi/souqline-backend/pkg/db/models"
	"github.com/omarhijazi/souqline-backend/pkg/enums"
	pkgerrors "github.com/omarhijazi/souqline-backend/pkg/errors"
	"github.com/omarhijazi/souqline-backend/pkg/logger"
	"github.com/omarhijazi/souqline-backend/pkg/metrics"
)

const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
	EventOrderStatus  = "order.status.updated"
)

// externalStatusMap fixes the translation from the storefront's status
// vocabulary to ours. Unrecognized values fall back to pending.
var externalStatusMap = map[string]enums.OrderStatus{
	"pending":            enums.OrderStatusPending,
	"confirmed":          enums.OrderStatusConfirmed,
	"processing":         enums.OrderStatusProcessing,
	"preparing":          enums.OrderStatusProcessing,
	"ready":              enums.OrderStatusReadyForShipping,
	"ready_for_shipping": enums.OrderStatusReadyForShipping,
	"shipped":            enums.OrderStatusShipped,
	"in_transit":         enums.OrderStatusShipped,
	"out_for_delivery":   enums.OrderStatusOutForDelivery,
	"delivered":          enums.OrderStatusDelivered,
	"completed":          enums.OrderStatusDelivered,
	"cancelled":          enums.OrderStatusCancelled,
	"canceled":           enums.OrderStatusCancelled,
	"returned":           enums.OrderStatusReturned,
	"refunded":           enums.OrderStatusRefunded,
}

func mapExternalStatus(raw string) enums.OrderStatus {
	if status, ok := externalStatusMap[raw]; ok {
		return status
	}
	return enums.OrderStatusPending
}

// Result is the ingestion outcome returned to the storefront.
type Result struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	Status      enums.OrderStatus `json:"status"`
	Created     bool              `json:"created"`
}

// Service ingests storefront webhook events. Creation is idempotent on
// (external order id, supplier); status updates are authoritative writes from
// the storefront and bypass the internal transition table.
type Service interface {
	HandleEvent(ctx context.Context, integration *models.StoreIntegration, payload Payload) (*Result, error)
}

type service struct {
	orders   orders.Repository
	products products.Repository
	cache    *products.Cache
	policy   pricing.Policy
	numbers  ordernum.Generator
	metrics  *metrics.OrderMetrics
	logg     *logger.Logger
}

// ServiceParams collects ingestor dependencies.
type ServiceParams struct {
	Orders   orders.Repository
	Products products.Repository
	Cache    *products.Cache
	Policy   pricing.Policy
	Numbers  ordernum.Generator
	Metrics  *metrics.OrderMetrics
	Logger   *logger.Logger
}

// NewService wires the webhook ingestor.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.Policy == nil {
		return nil, fmt.Errorf("pricing policy required")
	}
	if params.Numbers == nil {
		return nil, fmt.Errorf("order number generator required")
	}
	return &service{
		orders:   params.Orders,
		products: params.Products,
		cache:    params.Cache,
		policy:   params.Policy,
		numbers:  params.Numbers,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

func (s *service) HandleEvent(ctx context.Context, integration *models.StoreIntegration, payload Payload) (*Result, error) {
	if integration == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unauthorized")
	}
	if payload.Order.ID.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	s.metrics.IncWebhookEvent(payload.EventType)

	switch payload.EventType {
	case EventOrderCreated:
		return s.ingestOrder(ctx, integration, payload)
	case EventOrderUpdated, EventOrderStatus:
		return s.updateStatus(ctx, integration, payload)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unsupported event type %q", payload.EventType))
	}
}

func (s *service) ingestOrder(ctx context.Context, integration *models.StoreIntegration, payload Payload) (*Result, error) {
	externalOrderID := payload.Order.ID.ID
	supplierID := integration.UserID

	existing, err := s.orders.FindByExternalKey(ctx, externalOrderID, supplierID)
	if err == nil {
		return &Result{OrderID: existing.ID, OrderNumber: existing.OrderNumber, Status: existing.Status}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency lookup")
	}

	if len(payload.Order.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}

	subtotal := decimal.Zero
	commission := decimal.Zero
	marketerProfit := decimal.Zero
	items := make([]models.OrderItem, 0, len(payload.Order.Items))

	for _, line := range payload.Order.Items {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("item %q has non-positive quantity", line.SKU))
		}
		product, err := s.resolveProduct(ctx, supplierID, line)
		if err != nil {
			return nil, err
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		subtotal = subtotal.Add(line.Price.Mul(qty))
		commission = commission.Add(s.policy.AdminProfitForProduct(product.CostPrice, line.Quantity))

		// Marketer keeps whatever the storefront price exceeds our listed
		// marketer price by. Underpriced lines earn zero, never negative.
		margin := line.Price.Sub(s.policy.MarketerPriceFromSupplierPrice(product.CostPrice))
		if margin.IsPositive() {
			marketerProfit = marketerProfit.Add(margin.Mul(qty))
		}

		items = append(items, models.OrderItem{
			ID:           uuid.New(),
			ProductID:    product.ID,
			Name:         product.Name,
			Quantity:     line.Quantity,
			UnitPrice:    line.Price,
			VariantID:    line.VariantID,
			VariantValue: line.VariantValue,
		})
	}

	number, err := s.numbers.Next(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
	}

	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     number,
		Status:          mapExternalStatus(payload.Order.Status),
		SupplierID:      supplierID,
		CustomerID:      s.resolveCustomer(ctx, integration, payload.Order.Customer),
		Subtotal:        subtotal.Round(2),
		ShippingCost:    payload.Order.ShippingCost.Round(2),
		Commission:      commission.Round(2),
		MarketerProfit:  marketerProfit.Round(2),
		Total:           subtotal.Add(payload.Order.ShippingCost).Round(2),
		ExternalOrderID: &externalOrderID,
		ExternalStoreID: &integration.StoreID,
		Items:           items,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if db.IsUniqueViolation(err, "") {
			// Lost the race against a concurrent delivery of the same event.
			winner, lookupErr := s.orders.FindByExternalKey(ctx, externalOrderID, supplierID)
			if lookupErr == nil {
				return &Result{OrderID: winner.ID, OrderNumber: winner.OrderNumber, Status: winner.Status}, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	if s.logg != nil {
		c := s.logg.WithFields(ctx, map[string]any{
			"order_id":          order.ID.String(),
			"external_order_id": externalOrderID,
			"store_id":          integration.StoreID,
			"items":             len(items),
		})
		s.logg.Info(c, "storefront order ingested")
	}
	return &Result{OrderID: order.ID, OrderNumber: order.OrderNumber, Status: order.Status, Created: true}, nil
}

func (s *service) updateStatus(ctx context.Context, integration *models.StoreIntegration, payload Payload) (*Result, error) {
	order, err := s.orders.FindByExternalKey(ctx, payload.Order.ID.ID, integration.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order was never ingested")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	target := mapExternalStatus(payload.Order.Status)
	if err := s.orders.ForceSetStatus(ctx, order.ID, target, nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write storefront status")
	}

	if s.logg != nil {
		c := s.logg.WithFields(ctx, map[string]any{
			"order_id": order.ID.String(),
			"from":     order.Status.String(),
			"to":       target.String(),
		})
		s.logg.Info(c, "storefront status applied")
	}
	return &Result{OrderID: order.ID, OrderNumber: order.OrderNumber, Status: target}, nil
}

// resolveProduct matches a payload line to an internal product by SKU, then by
// external id. Unknown items get a synthetic unmatched record priced from the
// payload so ingestion never blocks on catalog gaps.
func (s *service) resolveProduct(ctx context.Context, supplierID uuid.UUID, line ItemPayload) (*models.Product, error) {
	cacheKey := "sku:" + line.SKU
	if line.SKU != "" {
		if cached := s.cache.Lookup(ctx, cacheKey); cached != nil {
			return cached, nil
		}
		product, err := s.products.FindBySKU(ctx, line.SKU)
		if err == nil {
			s.cache.Store(ctx, cacheKey, product)
			return product, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup product by sku")
		}
	}

	if line.ProductID.ID != "" {
		product, err := s.products.FindByExternalID(ctx, line.ProductID.ID)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup product by external id")
		}
	}

	return s.createUnmatched(ctx, supplierID, line)
}

func (s *service) createUnmatched(ctx context.Context, supplierID uuid.UUID, line ItemPayload) (*models.Product, error) {
	sku := line.SKU
	if sku == "" && line.ProductID.ID != "" {
		sku = "ext-" + line.ProductID.ID
	}
	if sku == "" {
		sku = "ext-" + uuid.NewString()
	}

	product := &models.Product{
		ID:            uuid.New(),
		SupplierID:    supplierID,
		SKU:           sku,
		Name:          line.Name,
		Price:         line.Price,
		CostPrice:     s.policy.SupplierPriceFromMarketerPrice(line.Price),
		StockQuantity: 0,
		Unmatched:     true,
	}
	if line.ProductID.ID != "" {
		externalID := line.ProductID.ID
		product.ExternalID = &externalID
	}

	if err := s.products.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			if existing, lookupErr := s.products.FindBySKU(ctx, sku); lookupErr == nil {
				return existing, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create unmatched product")
	}

	if s.logg != nil {
		c := s.logg.WithFields(ctx, map[string]any{
			"product_id": product.ID.String(),
			"sku":        sku,
		})
		s.logg.Warn(c, "unknown storefront item, created unmatched product")
	}
	return product, nil
}

// resolveCustomer parses the storefront's customer reference. When the
// reference is absent or not one of our user ids, the order is attributed to
// the integration owner.
func (s *service) resolveCustomer(ctx context.Context, integration *models.StoreIntegration, ref Ref) uuid.UUID {
	if ref.ID != "" {
		if id, err := uuid.Parse(ref.ID); err == nil {
			return id
		}
		if s.logg != nil {
			s.logg.Warn(ctx, "unparseable customer reference, attributing to integration owner")
		}
	}
	return integration.UserID
}
