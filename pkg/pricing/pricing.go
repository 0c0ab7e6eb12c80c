package pricing

import (
	"math"

	"github.com/google/uuid"
	"github.com/medsuite/pharmacare-api/pkg/apperror"
)

// LineItem is one cart entry priced at the moment of settlement. UnitPrice is
// expressed in currency units; bills settle to whole units.
type LineItem struct {
	ItemID    uuid.UUID
	Name      string
	UnitPrice float64
	Quantity  int
}

// Totals is the computed pricing breakdown for a bill. All amounts are in
// whole currency units.
type Totals struct {
	Subtotal       int64
	TaxPercent     float64
	TaxAmount      int64
	DiscountAmount int64
	Total          int64
}

// Round rounds an amount to the currency's minor unit, half away from zero.
func Round(amount float64) int64 {
	return int64(math.Round(amount))
}

// Calculate computes subtotal, tax and total for a set of line items. The
// subtotal is rounded before tax is applied, then the tax and the grand total
// are each rounded independently. Pure and deterministic; returns an error and
// commits nothing when the resulting total is not positive.
func Calculate(items []LineItem, taxPercent, discountAmount float64) (*Totals, error) {
	if len(items) == 0 {
		return nil, apperror.NewBadRequestError("At least one line item is required")
	}
	if taxPercent < 0 || taxPercent > 100 {
		return nil, apperror.NewBadRequestError("Tax percent must be between 0 and 100")
	}
	if discountAmount < 0 {
		return nil, apperror.NewBadRequestError("Discount amount cannot be negative")
	}

	var raw float64
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, apperror.NewBadRequestError("Line item quantity must be at least 1")
		}
		if item.UnitPrice < 0 {
			return nil, apperror.NewBadRequestError("Line item unit price cannot be negative")
		}
		raw += float64(item.Quantity) * item.UnitPrice
	}

	subtotal := Round(raw)
	tax := Round(float64(subtotal) * taxPercent / 100)
	discount := Round(discountAmount)
	total := subtotal + tax - discount

	if total <= 0 {
		return nil, apperror.NewInvalidBillAmountError(total)
	}

	return &Totals{
		Subtotal:       subtotal,
		TaxPercent:     taxPercent,
		TaxAmount:      tax,
		DiscountAmount: discount,
		Total:          total,
	}, nil
}
