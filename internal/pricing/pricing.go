// Package pricing computes order totals from cart lines.
package pricing

import (
	"fmt"

	"pizzeria-api/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the sales tax applied when none is configured.
var DefaultTaxRate = decimal.RequireFromString("0.085")

// Cart bounds. A cart inside them always prices to an amount that fits in
// int64 cents.
const (
	MaxLines        = 100
	MaxLineQuantity = 100
)

// MaxUnitPrice is the highest unit price a cart line may carry.
var MaxUnitPrice = decimal.NewFromInt(10000)

// Quote is the priced breakdown of a cart.
type Quote struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

// Engine prices carts. It holds no state besides its tax rate and is safe for concurrent use.
type Engine struct {
	taxRate decimal.Decimal
}

// NewEngine creates a pricing engine with the given tax rate.
func NewEngine(taxRate decimal.Decimal) *Engine {
	return &Engine{taxRate: taxRate}
}

// TaxRate returns the configured tax rate.
func (e *Engine) TaxRate() decimal.Decimal {
	return e.taxRate
}

// Price computes subtotal, tax and total for lines plus a delivery fee.
// Each amount is rounded to cents; total is the sum of the rounded parts.
func (e *Engine) Price(lines []model.CartLine, deliveryFee decimal.Decimal) (Quote, error) {
	if err := ValidateLines(lines); err != nil {
		return Quote{}, err
	}
	if deliveryFee.IsNegative() {
		return Quote{}, model.ErrInvalidCart.WithDetail("delivery fee must not be negative", nil)
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}
	subtotal = subtotal.Round(2)
	fee := deliveryFee.Round(2)
	tax := subtotal.Mul(e.taxRate).Round(2)

	return Quote{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Tax:         tax,
		Total:       subtotal.Add(fee).Add(tax).Round(2),
	}, nil
}

// ValidateLines checks that a cart is non-empty, within bounds and every line
// is well formed.
func ValidateLines(lines []model.CartLine) error {
	if len(lines) == 0 {
		return model.ErrInvalidCart.WithDetail("cart is empty", nil)
	}
	if len(lines) > MaxLines {
		return model.ErrInvalidCart.WithDetail(fmt.Sprintf("cart has more than %d lines", MaxLines), nil)
	}
	for i, line := range lines {
		if line.Quantity < 1 {
			return model.ErrInvalidCart.WithDetail(fmt.Sprintf("line %d: quantity must be at least 1", i), nil)
		}
		if line.Quantity > MaxLineQuantity {
			return model.ErrInvalidCart.WithDetail(fmt.Sprintf("line %d: quantity must not exceed %d", i, MaxLineQuantity), nil)
		}
		if line.UnitPrice.IsNegative() {
			return model.ErrInvalidCart.WithDetail(fmt.Sprintf("line %d: unit price must not be negative", i), nil)
		}
		if line.UnitPrice.GreaterThan(MaxUnitPrice) {
			return model.ErrInvalidCart.WithDetail(fmt.Sprintf("line %d: unit price must not exceed %s", i, MaxUnitPrice), nil)
		}
	}
	return nil
}
