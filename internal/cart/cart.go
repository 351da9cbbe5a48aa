package cart

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/juice-shop-backend/internal/pricing"
)

const (
	ActionIncrease = "increase"
	ActionDecrease = "decrease"
)

// Line is one product in a cart. Price is captured when the product is first
// added and is not refreshed afterwards.
type Line struct {
	ProductID int             `json:"productId"`
	Name      string          `json:"name"`
	Image     *string         `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Cart struct {
	UserID int    `json:"userId"`
	Items  []Line `json:"items"`
	pricing.Totals
	UpdatedAt time.Time `json:"updatedAt"`
}

func empty(userID int) Cart {
	c := Cart{UserID: userID, Items: []Line{}}
	c.recalculate()
	return c
}

func (c *Cart) indexOf(productID int) int {
	for i, l := range c.Items {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) recalculate() {
	lines := make([]pricing.Line, len(c.Items))
	for i := range c.Items {
		c.Items[i].Subtotal = pricing.Subtotal(c.Items[i].Price, c.Items[i].Quantity)
		lines[i] = pricing.Line{UnitPrice: c.Items[i].Price, Quantity: c.Items[i].Quantity}
	}
	c.Totals = pricing.Calculate(lines)
}
