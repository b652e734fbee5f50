package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarhijazi/souqline-backend/internal/inventory"
	"github.com/omarhijazi/souqline-backend/internal/orders"
	"github.com/omarhijazi/souqline-backend/internal/packages"
	"github.com/omarhijazi/souqline-backend/pkg/db/models"
	"github.com/omarhijazi/souqline-backend/pkg/enums"
	pkgerrors "github.com/omarhijazi/souqline-backend/pkg/errors"
	"github.com/omarhijazi/souqline-backend/pkg/logger"
)

// DecisionInput is an admin decision on a pending restock request.
type DecisionInput struct {
	RequestID uuid.UUID
	Decision  enums.FulfillmentStatus
	ActorID   uuid.UUID
	Reason    string
	Notes     string
}

// CascadedOrder reports one linked order touched by a decision or delivery.
type CascadedOrder struct {
	OrderID uuid.UUID         `json:"order_id"`
	Status  enums.OrderStatus `json:"status"`
	Error   string            `json:"error,omitempty"`
}

// DecisionResult is the outcome of Decide or MarkDelivered: the request's new
// state plus everything that rippled out to stock and linked orders.
type DecisionResult struct {
	RequestID uuid.UUID                `json:"request_id"`
	Status    enums.FulfillmentStatus  `json:"status"`
	Stock     []inventory.AppliedDelta `json:"stock,omitempty"`
	Orders    []CascadedOrder          `json:"orders,omitempty"`
}

// Service runs the restock approval workflow. Approval credits stock and
// unblocks linked orders; rejection after approval walks the stock back.
type Service interface {
	Decide(ctx context.Context, input DecisionInput) (*DecisionResult, error)
	MarkDelivered(ctx context.Context, requestID uuid.UUID, deliveredAt time.Time, actorID uuid.UUID) (*DecisionResult, error)
}

type service struct {
	repo     Repository
	orders   orders.Repository
	adjuster *inventory.Adjuster
	packages packages.Service
	logg     *logger.Logger
}

// NewService wires the fulfillment decision service.
func NewService(repo Repository, orderRepo orders.Repository, adjuster *inventory.Adjuster, pkgs packages.Service, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fulfillment repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if adjuster == nil {
		return nil, fmt.Errorf("inventory adjuster required")
	}
	return &service{repo: repo, orders: orderRepo, adjuster: adjuster, packages: pkgs, logg: logg}, nil
}

func (s *service) Decide(ctx context.Context, input DecisionInput) (*DecisionResult, error) {
	if input.Decision != enums.FulfillmentStatusApproved && input.Decision != enums.FulfillmentStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approved or rejected")
	}
	if input.Decision == enums.FulfillmentStatusRejected && input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}

	request, err := s.load(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}

	if input.Decision == enums.FulfillmentStatusApproved {
		return s.approve(ctx, request, input)
	}
	return s.reject(ctx, request, input)
}

func (s *service) approve(ctx context.Context, request *models.FulfillmentRequest, input DecisionInput) (*DecisionResult, error) {
	if request.Status != enums.FulfillmentStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("request is %s, only pending requests can be approved", request.Status))
	}

	result := &DecisionResult{RequestID: request.ID, Status: enums.FulfillmentStatusApproved}
	result.Stock = s.adjuster.Add(ctx, requestLines(request))

	now := time.Now().UTC()
	updates := map[string]any{
		"status":     enums.FulfillmentStatusApproved,
		"decided_at": now,
		"decided_by": input.ActorID,
	}
	if notes := s.auditNotes(request, result.Stock, input.Notes); notes != "" {
		updates["admin_notes"] = notes
	}
	if err := s.repo.UpdateFields(ctx, request.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist approval")
	}

	// Orders waiting on this restock move straight to processing. Orders that
	// advanced past confirmed in the meantime are left alone.
	result.Orders = s.cascade(ctx, request.OrderIDs,
		[]enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusConfirmed},
		enums.OrderStatusProcessing, &input.ActorID, false)

	s.logDecision(ctx, request.ID, "fulfillment request approved", len(result.Stock), len(result.Orders))
	return result, nil
}

func (s *service) reject(ctx context.Context, request *models.FulfillmentRequest, input DecisionInput) (*DecisionResult, error) {
	if request.Status == enums.FulfillmentStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request already rejected")
	}

	result := &DecisionResult{RequestID: request.ID, Status: enums.FulfillmentStatusRejected}

	// Rejecting a previously approved request walks the credited stock back,
	// clamped at zero. Linked orders already advanced are not rolled back.
	if request.Status == enums.FulfillmentStatusApproved {
		result.Stock = s.adjuster.Reverse(ctx, requestLines(request))
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"status":           enums.FulfillmentStatusRejected,
		"rejection_reason": input.Reason,
		"decided_at":       now,
		"decided_by":       input.ActorID,
	}
	if err := s.repo.UpdateFields(ctx, request.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist rejection")
	}

	s.logDecision(ctx, request.ID, "fulfillment request rejected", len(result.Stock), 0)
	return result, nil
}

func (s *service) MarkDelivered(ctx context.Context, requestID uuid.UUID, deliveredAt time.Time, actorID uuid.UUID) (*DecisionResult, error) {
	request, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}

	// Physical delivery is a fact, not a workflow step. The date is stamped
	// and linked orders cascade whatever the approval state of the request.
	if deliveredAt.IsZero() {
		deliveredAt = time.Now().UTC()
	}
	if err := s.repo.UpdateFields(ctx, request.ID, map[string]any{
		"actual_delivery_date": deliveredAt,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist delivery date")
	}

	result := &DecisionResult{RequestID: request.ID, Status: request.Status}
	result.Orders = s.cascade(ctx, request.OrderIDs,
		[]enums.OrderStatus{enums.OrderStatusConfirmed, enums.OrderStatusProcessing},
		enums.OrderStatusReadyForShipping, &actorID, true)

	s.logDecision(ctx, request.ID, "fulfillment request delivered", 0, len(result.Orders))
	return result, nil
}

// cascade force-sets every linked order currently in one of the from statuses
// to the target. Each order is independent; failures are reported, not fatal.
func (s *service) cascade(ctx context.Context, orderIDs []uuid.UUID, from []enums.OrderStatus, target enums.OrderStatus, actorID *uuid.UUID, withPackage bool) []CascadedOrder {
	cascaded := make([]CascadedOrder, 0, len(orderIDs))
	for _, orderID := range orderIDs {
		order, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				cascaded = append(cascaded, CascadedOrder{OrderID: orderID, Error: "order not found"})
				continue
			}
			cascaded = append(cascaded, CascadedOrder{OrderID: orderID, Error: err.Error()})
			continue
		}
		if !statusIn(order.Status, from) {
			continue
		}
		entry := CascadedOrder{OrderID: orderID, Status: target}
		if err := s.orders.ForceSetStatus(ctx, orderID, target, actorID); err != nil {
			entry.Status = order.Status
			entry.Error = err.Error()
			cascaded = append(cascaded, entry)
			continue
		}
		if withPackage && s.packages != nil && order.PackageID == nil {
			if _, err := s.packages.CreateFromOrder(ctx, orderID); err != nil && s.logg != nil {
				c := s.logg.WithOrderID(ctx, orderID.String())
				s.logg.Error(c, "package creation failed during fulfillment delivery", err)
			}
		}
		cascaded = append(cascaded, entry)
	}
	return cascaded
}

func (s *service) load(ctx context.Context, requestID uuid.UUID) (*models.FulfillmentRequest, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fulfillment request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fulfillment request")
	}
	return request, nil
}

// auditNotes records the per-product stock movement on the request itself so
// the approval leaves a durable trail alongside the logs.
func (s *service) auditNotes(request *models.FulfillmentRequest, deltas []inventory.AppliedDelta, extra string) string {
	var b strings.Builder
	if request.AdminNotes != nil && *request.AdminNotes != "" {
		b.WriteString(*request.AdminNotes)
		b.WriteString("\n")
	}
	if extra != "" {
		b.WriteString(extra)
		b.WriteString("\n")
	}
	for _, delta := range deltas {
		if delta.Skipped {
			fmt.Fprintf(&b, "product %s: adjustment skipped\n", delta.ProductID)
			continue
		}
		fmt.Fprintf(&b, "product %s: stock %d -> %d\n", delta.ProductID, delta.Before, delta.After)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *service) logDecision(ctx context.Context, requestID uuid.UUID, msg string, stockLines, cascaded int) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"request_id":  requestID.String(),
		"stock_lines": stockLines,
		"cascaded":    cascaded,
	})
	s.logg.Info(ctx, msg)
}

func requestLines(request *models.FulfillmentRequest) []inventory.Line {
	lines := make([]inventory.Line, 0, len(request.Items))
	for _, item := range request.Items {
		lines = append(lines, inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

func statusIn(status enums.OrderStatus, set []enums.OrderStatus) bool {
	for _, candidate := range set {
		if candidate == status {
			return true
		}
	}
	return false
}
