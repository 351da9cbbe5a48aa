package order

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/juice-shop-backend/internal/pricing"
	"github.com/wichananm65/juice-shop-backend/internal/product"
)

const (
	StatusPlaced     = "placed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

const (
	MethodCOD        = "cod"
	MethodUPI        = "upi"
	MethodCreditCard = "credit-card"
	MethodDebitCard  = "debit-card"
)

// lifecycle is the forward order of fulfilment statuses.
var lifecycle = []string{StatusPlaced, StatusProcessing, StatusShipped, StatusDelivered}

var (
	paymentMethods  = []string{MethodCOD, MethodUPI, MethodCreditCard, MethodDebitCard}
	paymentStatuses = []string{PaymentPending, PaymentPaid, PaymentFailed}
)

// Item is the snapshot of a product at placement time.
type Item struct {
	ProductID int             `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
}

type Order struct {
	ID            int             `json:"orderId"`
	UserID        int             `json:"userId"`
	Items         []Item          `json:"items"`
	Address       ShippingAddress `json:"address"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus"`
	OrderStatus   string          `json:"orderStatus"`
	pricing.Totals
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Line requests Quantity units of ProductID.
type Line struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type ListFilter struct {
	UserID int // 0 lists every user's orders
	Status string
	Limit  int
	Offset int
}

type Page struct {
	Orders      []Order `json:"orders"`
	TotalOrders int     `json:"totalOrders"`
	Page        int     `json:"page"`
	TotalPages  int     `json:"totalPages"`
}

// build prices the lines against the product snapshots, which must be in
// the same order as lines.
func build(userID int, lines []Line, snapshots []product.Product, addr ShippingAddress, method string) Order {
	items := make([]Item, len(lines))
	priced := make([]pricing.Line, len(lines))
	for i, l := range lines {
		p := snapshots[i]
		items[i] = Item{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  l.Quantity,
			Subtotal:  pricing.Subtotal(p.Price, l.Quantity),
		}
		priced[i] = pricing.Line{UnitPrice: p.Price, Quantity: l.Quantity}
	}
	return Order{
		UserID:        userID,
		Items:         items,
		Address:       addr,
		PaymentMethod: method,
		PaymentStatus: PaymentPending,
		OrderStatus:   StatusPlaced,
		Totals:        pricing.Calculate(priced),
	}
}

func stockRequests(lines []Line) []product.StockRequest {
	reqs := make([]product.StockRequest, len(lines))
	for i, l := range lines {
		reqs[i] = product.StockRequest{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return reqs
}

func itemRequests(items []Item) []product.StockRequest {
	reqs := make([]product.StockRequest, len(items))
	for i, it := range items {
		reqs[i] = product.StockRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return reqs
}

func cancellable(status string) bool {
	return status == StatusPlaced || status == StatusProcessing
}

func stage(status string) int {
	for i, s := range lifecycle {
		if s == status {
			return i
		}
	}
	return -1
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (o Order) hasProduct(productID int) bool {
	for _, it := range o.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}
