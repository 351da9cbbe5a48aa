package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name     string
		lines    []Line
		total    string
		discount string
		final    string
	}{
		{"empty", nil, "0", "0", "0"},
		{"small order", []Line{{d("100"), 2}, {d("50"), 1}}, "250", "0", "250"},
		{"just below threshold", []Line{{d("49999.99"), 1}}, "49999.99", "0", "49999.99"},
		{"exactly threshold", []Line{{d("25000"), 2}}, "50000", "5000", "45000"},
		{"above threshold", []Line{{d("30000"), 1}, {d("30000.05"), 1}}, "60000.05", "6000.01", "54000.04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.lines)
			assert.True(t, got.TotalPrice.Equal(d(tt.total)), "total %s", got.TotalPrice)
			assert.True(t, got.Discount.Equal(d(tt.discount)), "discount %s", got.Discount)
			assert.True(t, got.FinalPrice.Equal(d(tt.final)), "final %s", got.FinalPrice)
		})
	}
}

func TestCalculate_FinalIsTotalMinusDiscount(t *testing.T) {
	prices := []string{"0", "0.01", "19.99", "1250.5", "49999.99", "50000", "73333.33"}
	for _, p := range prices {
		for q := 0; q <= 3; q++ {
			got := Calculate([]Line{{d(p), q}})
			assert.True(t, got.FinalPrice.Equal(got.TotalPrice.Sub(got.Discount)))
			if got.TotalPrice.LessThan(DiscountThreshold) {
				assert.True(t, got.Discount.IsZero())
			} else {
				assert.True(t, got.Discount.Equal(got.TotalPrice.Mul(DiscountRate).Round(2)))
			}
		}
	}
}
