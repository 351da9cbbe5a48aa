package admin

import "github.com/shopspring/decimal"

// Dashboard summarises the shop for administrators. Revenue is the sum of
// finalPrice over delivered orders.
type Dashboard struct {
	TotalUsers    int             `json:"totalUsers"`
	TotalOrders   int             `json:"totalOrders"`
	TotalProducts int             `json:"totalProducts"`
	Revenue       decimal.Decimal `json:"revenue"`
}
