package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/omarhijazi/souqline-backend/pkg/config"
)

// Policy is the pure pricing calculator the order pipeline consults when it
// needs commission or derived prices. No side effects.
type Policy interface {
	AdminProfitForProduct(costBasis decimal.Decimal, qty int) decimal.Decimal
	MarketerPriceFromSupplierPrice(cost decimal.Decimal) decimal.Decimal
	SupplierPriceFromMarketerPrice(price decimal.Decimal) decimal.Decimal
}

type marginPolicy struct {
	adminMargin    decimal.Decimal
	marketerMargin decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// NewPolicy builds a margin-based policy from configuration percentages.
func NewPolicy(cfg config.PricingConfig) (Policy, error) {
	adminMargin, err := decimal.NewFromString(cfg.AdminMarginPercent)
	if err != nil {
		return nil, fmt.Errorf("parsing admin margin: %w", err)
	}
	marketerMargin, err := decimal.NewFromString(cfg.MarketerMarginPercent)
	if err != nil {
		return nil, fmt.Errorf("parsing marketer margin: %w", err)
	}
	if adminMargin.IsNegative() || marketerMargin.IsNegative() {
		return nil, fmt.Errorf("margins must not be negative")
	}
	return &marginPolicy{adminMargin: adminMargin, marketerMargin: marketerMargin}, nil
}

func (p *marginPolicy) AdminProfitForProduct(costBasis decimal.Decimal, qty int) decimal.Decimal {
	if qty <= 0 || costBasis.IsNegative() {
		return decimal.Zero
	}
	return costBasis.
		Mul(p.adminMargin).
		Div(hundred).
		Mul(decimal.NewFromInt(int64(qty))).
		Round(2)
}

func (p *marginPolicy) MarketerPriceFromSupplierPrice(cost decimal.Decimal) decimal.Decimal {
	if cost.IsNegative() {
		return decimal.Zero
	}
	return cost.Mul(hundred.Add(p.marketerMargin)).Div(hundred).Round(2)
}

func (p *marginPolicy) SupplierPriceFromMarketerPrice(price decimal.Decimal) decimal.Decimal {
	if price.IsNegative() {
		return decimal.Zero
	}
	return price.Mul(hundred).Div(hundred.Add(p.marketerMargin)).Round(2)
}
