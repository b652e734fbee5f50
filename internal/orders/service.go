package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/omarhijazi/souqline-backend/internal/inventory"
	"github.com/omarhijazi/souqline-backend/internal/notifications"
	"github.com/omarhijazi/souqline-backend/internal/packages"
	"github.com/omarhijazi/souqline-backend/internal/wallet"
	"github.com/omarhijazi/souqline-backend/pkg/db/models"
	"github.com/omarhijazi/souqline-backend/pkg/enums"
	pkgerrors "github.com/omarhijazi/souqline-backend/pkg/errors"
	"github.com/omarhijazi/souqline-backend/pkg/logger"
	"github.com/omarhijazi/souqline-backend/pkg/metrics"
)

// Service is the single entry point for admin-driven order status changes.
// It sequences validation, the status write, and the best-effort side effects
// (stock restore, profit settlement, package creation, notification) for each
// order in a batch. The status write is the transaction of record; everything
// downstream is reported through OrderOutcome.SideEffects instead of failing
// the request.
type Service interface {
	BulkAction(ctx context.Context, input BulkActionInput) (*BulkActionResult, error)
}

type service struct {
	repo     Repository
	adjuster *inventory.Adjuster
	wallet   wallet.Service
	packages packages.Service
	notifier notifications.Notifier
	metrics  *metrics.OrderMetrics
	logg     *logger.Logger
}

// ServiceParams collects orchestrator dependencies.
type ServiceParams struct {
	Repo     Repository
	Adjuster *inventory.Adjuster
	Wallet   wallet.Service
	Packages packages.Service
	Notifier notifications.Notifier
	Metrics  *metrics.OrderMetrics
	Logger   *logger.Logger
}

// NewService wires the order status orchestrator.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Adjuster == nil {
		return nil, fmt.Errorf("inventory adjuster required")
	}
	if params.Wallet == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if params.Packages == nil {
		return nil, fmt.Errorf("packages service required")
	}
	return &service{
		repo:     params.Repo,
		adjuster: params.Adjuster,
		wallet:   params.Wallet,
		packages: params.Packages,
		notifier: params.Notifier,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

func (s *service) BulkAction(ctx context.Context, input BulkActionInput) (*BulkActionResult, error) {
	if len(input.OrderIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order id required")
	}
	if !input.Action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid action")
	}
	if (input.Action == enums.OrderActionCancel || input.Action == enums.OrderActionReturn) && input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required for cancel/return")
	}

	// Lookup is all-or-nothing: a batch referencing a nonexistent order is
	// rejected up front. Transition checks below are per order.
	loaded, err := s.repo.FindByIDs(ctx, input.OrderIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}
	if len(loaded) != len(input.OrderIDs) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "one or more orders not found").
			WithDetails(map[string]any{"requested": len(input.OrderIDs), "found": len(loaded)})
	}
	byID := make(map[uuid.UUID]*models.Order, len(loaded))
	for i := range loaded {
		byID[loaded[i].ID] = &loaded[i]
	}

	result := &BulkActionResult{Action: input.Action}
	for _, id := range input.OrderIDs {
		outcome := s.applyAction(ctx, byID[id], input)
		result.Outcomes = append(result.Outcomes, outcome)
	}

	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"action": input.Action.String(),
			"total":  len(result.Outcomes),
			"failed": result.failed(),
		})
		s.logg.Info(ctx, "bulk order action completed")
	}
	return result, nil
}

func (s *service) applyAction(ctx context.Context, order *models.Order, input BulkActionInput) OrderOutcome {
	outcome := OrderOutcome{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
	}

	if input.Action == enums.OrderActionUpdateShipping {
		return s.updateShipping(ctx, order, input)
	}

	target, ok := StatusForAction(input.Action)
	if !ok {
		outcome.Error = fmt.Sprintf("action %s has no target status", input.Action)
		return outcome
	}
	if !IsValidTransition(order.Status, target) {
		s.metrics.IncRejected(input.Action.String())
		outcome.Error = fmt.Sprintf("order %s: illegal transition %s -> %s",
			order.OrderNumber, order.Status, target)
		return outcome
	}

	// Reversal runs before the status write; its failure never blocks the
	// cancellation/return itself.
	if target == enums.OrderStatusCancelled || target == enums.OrderStatusReturned {
		outcome.SideEffects = append(outcome.SideEffects, s.reverseProfits(ctx, order, input))
	}

	updates := map[string]any{"status": target}
	now := time.Now().UTC()
	actor := input.ActorID
	for k, v := range statusStamps(target, now, &actor) {
		updates[k] = v
	}
	switch target {
	case enums.OrderStatusCancelled:
		updates["cancel_reason"] = input.Reason
	case enums.OrderStatusReturned:
		updates["return_reason"] = input.Reason
	case enums.OrderStatusShipped:
		mergeShippingFields(updates, input)
	}

	// Package must exist by ship time; creation failure is a soft path and
	// the shipment proceeds without a linked package.
	if target == enums.OrderStatusShipped && order.PackageID == nil {
		outcome.SideEffects = append(outcome.SideEffects, s.ensurePackage(ctx, order))
	}

	if err := s.repo.UpdateFields(ctx, order.ID, updates); err != nil {
		outcome.Error = fmt.Sprintf("order %s: persist status: %v", order.OrderNumber, err)
		return outcome
	}
	previous := order.Status
	order.Status = target
	outcome.Status = target
	s.metrics.IncTransition(input.Action.String())

	switch target {
	case enums.OrderStatusDelivered:
		// Status is persisted first: a crash mid-distribution leaves a
		// delivered order with profits_distributed=false, recoverable by a
		// manual re-trigger.
		outcome.SideEffects = append(outcome.SideEffects, s.distributeProfits(ctx, order, input))
	case enums.OrderStatusCancelled:
		if previous == enums.OrderStatusConfirmed || previous == enums.OrderStatusProcessing {
			outcome.SideEffects = append(outcome.SideEffects, s.restoreStock(ctx, order)...)
		}
	case enums.OrderStatusReturned:
		outcome.SideEffects = append(outcome.SideEffects, s.restoreStock(ctx, order)...)
	}

	s.notify(ctx, order, target)
	return outcome
}

// updateShipping merges shipping metadata without touching the state machine.
func (s *service) updateShipping(ctx context.Context, order *models.Order, input BulkActionInput) OrderOutcome {
	outcome := OrderOutcome{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
	}
	updates := map[string]any{}
	mergeShippingFields(updates, input)
	if len(updates) == 0 {
		outcome.Error = fmt.Sprintf("order %s: no shipping fields provided", order.OrderNumber)
		return outcome
	}
	if err := s.repo.UpdateFields(ctx, order.ID, updates); err != nil {
		outcome.Error = fmt.Sprintf("order %s: update shipping: %v", order.OrderNumber, err)
	}
	return outcome
}

func (s *service) reverseProfits(ctx context.Context, order *models.Order, input BulkActionInput) SideEffectResult {
	result := SideEffectResult{Name: "profit_reversal", OK: true}
	// The order loaded at batch start may be stale; a settlement can land
	// between the lookup and this point. The conditional swap inside Reverse
	// decides against the current row, so it is always attempted.
	applied, err := s.wallet.Reverse(ctx, order, input.ActorID, "order "+string(input.Action))
	if err != nil {
		result.OK = false
		result.Detail = err.Error()
		s.metrics.IncSideEffectFailure("profit_reversal")
		if s.logg != nil {
			c := s.logg.WithFields(ctx, map[string]any{
				"order_id":        order.ID.String(),
				"commission":      order.Commission.String(),
				"marketer_profit": order.MarketerProfit.String(),
			})
			s.logg.Error(c, "profit reversal failed, needs manual reconciliation", err)
		}
		return result
	}
	if applied {
		order.ProfitsDistributed = false
	} else {
		result.Detail = "nothing to reverse"
	}
	return result
}

func (s *service) distributeProfits(ctx context.Context, order *models.Order, input BulkActionInput) SideEffectResult {
	result := SideEffectResult{Name: "profit_distribution", OK: true}
	applied, err := s.wallet.Distribute(ctx, order, input.ActorID)
	if err != nil {
		result.OK = false
		result.Detail = err.Error()
		s.metrics.IncSideEffectFailure("profit_distribution")
		if s.logg != nil {
			c := s.logg.WithOrderID(ctx, order.ID.String())
			s.logg.Error(c, "profit distribution failed after delivery, needs manual re-trigger", err)
		}
		return result
	}
	if applied {
		order.ProfitsDistributed = true
	} else {
		result.Detail = "already distributed"
	}
	return result
}

func (s *service) ensurePackage(ctx context.Context, order *models.Order) SideEffectResult {
	result := SideEffectResult{Name: "package_creation", OK: true}
	pkg, err := s.packages.CreateFromOrder(ctx, order.ID)
	if err != nil {
		result.OK = false
		result.Detail = err.Error()
		s.metrics.IncSideEffectFailure("package_creation")
		if s.logg != nil {
			c := s.logg.WithOrderID(ctx, order.ID.String())
			s.logg.Error(c, "package creation failed, shipping without linked package", err)
		}
		return result
	}
	order.PackageID = &pkg.ID
	result.Detail = pkg.ID.String()
	return result
}

func (s *service) restoreStock(ctx context.Context, order *models.Order) []SideEffectResult {
	lines := make([]inventory.Line, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, inventory.Line{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			VariantID:    item.VariantID,
			VariantValue: item.VariantValue,
		})
	}
	results := make([]SideEffectResult, 0, len(lines))
	for _, delta := range s.adjuster.Restore(ctx, lines) {
		result := SideEffectResult{Name: "stock_restore", OK: !delta.Skipped}
		switch {
		case delta.Skipped:
			result.Detail = fmt.Sprintf("product %s skipped", delta.ProductID)
			s.metrics.IncSideEffectFailure("stock_restore")
		case delta.VariantMissing:
			result.Detail = fmt.Sprintf("product %s: variant missing, aggregate only", delta.ProductID)
		default:
			result.Detail = fmt.Sprintf("product %s: %d -> %d", delta.ProductID, delta.Before, delta.After)
		}
		results = append(results, result)
	}
	return results
}

func (s *service) notify(ctx context.Context, order *models.Order, status enums.OrderStatus) {
	if s.notifier == nil {
		return
	}
	s.notifier.Send(ctx, order.CustomerID, notifications.Notification{
		Event:       "order." + status.String(),
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Message:     fmt.Sprintf("order %s is now %s", order.OrderNumber, status),
	}, notifications.Options{SendEmail: true, SendSocket: true})
}

func mergeShippingFields(updates map[string]any, input BulkActionInput) {
	if input.ShippingCompany != nil {
		updates["shipping_company"] = *input.ShippingCompany
	}
	if input.ShippingCity != nil {
		updates["shipping_city"] = *input.ShippingCity
	}
	if input.ShippingVillage != nil {
		updates["shipping_village"] = *input.ShippingVillage
	}
}
