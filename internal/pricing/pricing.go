// Package pricing computes cart and order totals.
package pricing

import "github.com/shopspring/decimal"

var (
	// DiscountThreshold is the total at or above which the bulk discount applies.
	DiscountThreshold = decimal.NewFromInt(50000)
	DiscountRate      = decimal.NewFromFloat(0.10)
)

const places = 2

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

type Totals struct {
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Discount   decimal.Decimal `json:"discount"`
	FinalPrice decimal.Decimal `json:"finalPrice"`
}

// Calculate sums the lines and applies the bulk discount. The discount is
// rounded half away from zero to two places and finalPrice is derived from
// the rounded discount, so finalPrice = totalPrice - discount always holds.
func Calculate(lines []Line) Totals {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(Subtotal(l.UnitPrice, l.Quantity))
	}

	discount := decimal.Zero
	if total.GreaterThanOrEqual(DiscountThreshold) {
		discount = total.Mul(DiscountRate).Round(places)
	}

	return Totals{
		TotalPrice: total,
		Discount:   discount,
		FinalPrice: total.Sub(discount),
	}
}

func Subtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
