package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarhijazi/souqline-backend/internal/products"
	"github.com/omarhijazi/souqline-backend/pkg/logger"
)

// Line is one stock adjustment request, usually derived from an order item or
// a fulfillment item.
type Line struct {
	ProductID    uuid.UUID
	Quantity     int
	VariantID    *string
	VariantValue *string
}

// AppliedDelta reports what actually happened to one line. VariantMissing is
// the degraded path: the referenced variant no longer exists, so only the
// aggregate count moved.
type AppliedDelta struct {
	ProductID      uuid.UUID
	Quantity       int
	VariantID      *string
	VariantValue   *string
	VariantMissing bool
	Skipped        bool
	Before         int
	After          int
}

// Adjuster applies stock deltas line by line. Each line is an independent
// write: a failure on one line never rolls back the others. This mirrors the
// reconciliation model of the rest of the pipeline, where stock drift is
// surfaced in logs for manual correction.
type Adjuster struct {
	repo products.Repository
	logg *logger.Logger
}

// NewAdjuster wires the inventory adjuster.
func NewAdjuster(repo products.Repository, logg *logger.Logger) (*Adjuster, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &Adjuster{repo: repo, logg: logg}, nil
}

// Restore adds each line's quantity back to stock after a cancel or return.
// Missing products are skipped, stale variant references fall back to the
// aggregate count.
func (a *Adjuster) Restore(ctx context.Context, lines []Line) []AppliedDelta {
	return a.apply(ctx, lines, 1)
}

// Add increases stock for an approved fulfillment request. Same per-line
// semantics as Restore.
func (a *Adjuster) Add(ctx context.Context, lines []Line) []AppliedDelta {
	return a.apply(ctx, lines, 1)
}

// Reverse undoes a prior Add when an approval is rejected. Stock is clamped at
// zero rather than going negative.
func (a *Adjuster) Reverse(ctx context.Context, lines []Line) []AppliedDelta {
	deltas := make([]AppliedDelta, 0, len(lines))
	for _, line := range lines {
		delta := AppliedDelta{ProductID: line.ProductID, Quantity: line.Quantity}
		product, err := a.repo.FindByID(ctx, line.ProductID)
		if err != nil {
			delta.Skipped = true
			a.warnLine(ctx, line, "product missing during stock reversal", err)
			deltas = append(deltas, delta)
			continue
		}

		delta.Before = product.StockQuantity
		next := product.StockQuantity - line.Quantity
		if next < 0 {
			next = 0
		}
		if err := a.repo.SetStock(ctx, line.ProductID, next); err != nil {
			delta.Skipped = true
			a.warnLine(ctx, line, "stock reversal write failed", err)
			deltas = append(deltas, delta)
			continue
		}
		delta.After = next
		deltas = append(deltas, delta)
	}
	return deltas
}

func (a *Adjuster) apply(ctx context.Context, lines []Line, sign int) []AppliedDelta {
	deltas := make([]AppliedDelta, 0, len(lines))
	for _, line := range lines {
		deltas = append(deltas, a.applyLine(ctx, line, sign*line.Quantity))
	}
	return deltas
}

func (a *Adjuster) applyLine(ctx context.Context, line Line, qty int) AppliedDelta {
	delta := AppliedDelta{
		ProductID:    line.ProductID,
		Quantity:     qty,
		VariantID:    line.VariantID,
		VariantValue: line.VariantValue,
	}

	product, err := a.repo.FindByID(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			delta.Skipped = true
			a.warnLine(ctx, line, "product missing during stock adjustment", nil)
			return delta
		}
		delta.Skipped = true
		a.warnLine(ctx, line, "product load failed during stock adjustment", err)
		return delta
	}
	delta.Before = product.StockQuantity

	if product.HasVariants && line.VariantID != nil && line.VariantValue != nil {
		matched, err := a.repo.IncrementVariantStock(ctx, line.ProductID, *line.VariantID, *line.VariantValue, qty)
		if err != nil {
			delta.Skipped = true
			a.warnLine(ctx, line, "variant stock write failed", err)
			return delta
		}
		if matched == 0 {
			// Stale variant reference: adjust only the aggregate so the
			// restore still lands somewhere observable.
			delta.VariantMissing = true
			a.warnLine(ctx, line, "variant not found, adjusting aggregate stock only", nil)
		}
	}

	if err := a.repo.IncrementStock(ctx, line.ProductID, qty); err != nil {
		delta.Skipped = true
		a.warnLine(ctx, line, "aggregate stock write failed", err)
		return delta
	}
	delta.After = delta.Before + qty
	return delta
}

func (a *Adjuster) warnLine(ctx context.Context, line Line, msg string, err error) {
	if a.logg == nil {
		return
	}
	ctx = a.logg.WithFields(ctx, map[string]any{
		"product_id": line.ProductID.String(),
		"quantity":   line.Quantity,
	})
	if err != nil {
		a.logg.Error(ctx, msg, err)
		return
	}
	a.logg.Warn(ctx, msg)
}
