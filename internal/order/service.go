package order

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/juice-shop-backend/internal/address"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
	"github.com/wichananm65/juice-shop-backend/internal/auth"
	"github.com/wichananm65/juice-shop-backend/internal/cart"
)

const (
	defaultPageSize = 5
	maxPageSize     = 50
)

// AddressBook resolves a saved address of the acting user.
type AddressBook interface {
	Get(ctx context.Context, userID, id int) (address.Address, error)
}

// CartStore is the cart the checkout flow reads and clears.
type CartStore interface {
	Get(ctx context.Context, userID int) (cart.Cart, error)
	Clear(ctx context.Context, userID int) error
}

// Delivery describes where and how an order is paid and shipped. Either
// AddressID or Address must be set.
type Delivery struct {
	Address       *ShippingAddress `json:"address,omitempty"`
	AddressID     *int             `json:"addressId,omitempty"`
	PaymentMethod string           `json:"paymentMethod"`
}

type Service struct {
	repo      Repository
	addresses AddressBook
	carts     CartStore
}

func NewService(repo Repository, addresses AddressBook, carts CartStore) *Service {
	return &Service{repo: repo, addresses: addresses, carts: carts}
}

// Place validates the request and places it as one unit. Repeated product
// ids are merged into one line.
func (s *Service) Place(ctx context.Context, userID int, lines []Line, d Delivery) (Order, error) {
	merged, err := mergeLines(lines)
	if err != nil {
		return Order{}, err
	}
	addr, err := s.resolve(ctx, userID, d)
	if err != nil {
		return Order{}, err
	}
	o, err := s.repo.Place(ctx, userID, merged, addr, d.PaymentMethod)
	if err != nil {
		return Order{}, err
	}
	log.Infof("order %d placed by user %d: %d lines, final price %s", o.ID, userID, len(o.Items), o.FinalPrice)
	return o, nil
}

func (s *Service) BuyNow(ctx context.Context, userID, productID, quantity int, d Delivery) (Order, error) {
	if quantity == 0 {
		quantity = 1
	}
	return s.Place(ctx, userID, []Line{{ProductID: productID, Quantity: quantity}}, d)
}

// Checkout places the user's cart and then empties it. Cart prices are not
// reused; the order is priced against the catalog at placement.
func (s *Service) Checkout(ctx context.Context, userID int, d Delivery) (Order, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return Order{}, err
	}
	if len(c.Items) == 0 {
		return Order{}, apperr.Invalid("cart", "cart is empty")
	}
	lines := make([]Line, len(c.Items))
	for i, it := range c.Items {
		lines[i] = Line{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	o, err := s.Place(ctx, userID, lines, d)
	if err != nil {
		return Order{}, err
	}
	if err := s.carts.Clear(ctx, userID); err != nil {
		log.Warnf("clear cart of user %d after order %d: %v", userID, o.ID, err)
	}
	return o, nil
}

// Get returns the order if the caller owns it or is an admin.
func (s *Service) Get(ctx context.Context, who auth.Identity, id int) (Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.UserID != who.UserID && !who.IsAdmin() {
		return Order{}, ErrNotOwner
	}
	return o, nil
}

func (s *Service) ListMine(ctx context.Context, userID, page, limit int, status string) (Page, error) {
	return s.list(ctx, userID, page, limit, status)
}

func (s *Service) ListAll(ctx context.Context, page, limit int, status string) (Page, error) {
	return s.list(ctx, 0, page, limit, status)
}

func (s *Service) list(ctx context.Context, userID, page, limit int, status string) (Page, error) {
	if status != "" && status != StatusCancelled && stage(status) < 0 {
		return Page{}, apperr.Invalid("status", "unknown order status")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	orders, total, err := s.repo.List(ctx, ListFilter{UserID: userID, Status: status, Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return Page{}, err
	}
	return Page{
		Orders:      orders,
		TotalOrders: total,
		Page:        page,
		TotalPages:  (total + limit - 1) / limit,
	}, nil
}

// Cancel cancels the caller's own order and restores its stock.
func (s *Service) Cancel(ctx context.Context, userID, id int) (Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.UserID != userID {
		return Order{}, ErrNotOwner
	}
	if !cancellable(o.OrderStatus) {
		return Order{}, ErrNotCancellable
	}
	return s.repo.Cancel(ctx, id)
}

// UpdateStatus moves an order forward along its lifecycle. Setting
// cancelled goes through the cancellation path so stock is restored.
func (s *Service) UpdateStatus(ctx context.Context, id int, status string) (Order, error) {
	if status == StatusCancelled {
		return s.repo.Cancel(ctx, id)
	}
	to := stage(status)
	if to < 0 {
		return Order{}, apperr.Invalid("status", "status must be one of "+strings.Join(lifecycle, ", ")+", "+StatusCancelled)
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if from := stage(o.OrderStatus); from < 0 || to <= from {
		return Order{}, ErrInvalidTransition
	}
	return s.repo.SetStatus(ctx, id, o.OrderStatus, status)
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, id int, status string) (Order, error) {
	if !contains(paymentStatuses, status) {
		return Order{}, apperr.Invalid("paymentStatus", "payment status must be one of "+strings.Join(paymentStatuses, ", "))
	}
	return s.repo.SetPaymentStatus(ctx, id, status)
}

// HasDelivered reports whether the user has a delivered order containing
// the product.
func (s *Service) HasDelivered(ctx context.Context, userID, productID int) (bool, error) {
	return s.repo.HasDelivered(ctx, userID, productID)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) DeliveredRevenue(ctx context.Context) (decimal.Decimal, error) {
	return s.repo.DeliveredRevenue(ctx)
}

// OrderTotals is the order history summary shown on a customer's profile.
func (s *Service) OrderTotals(ctx context.Context, userID int) (int, decimal.Decimal, error) {
	return s.repo.UserTotals(ctx, userID)
}

func mergeLines(lines []Line) ([]Line, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	merged := make([]Line, 0, len(lines))
	index := map[int]int{}
	for _, l := range lines {
		if l.ProductID <= 0 {
			return nil, apperr.Invalid("productId", "productId must be positive")
		}
		if l.Quantity < 1 {
			return nil, apperr.Invalid("quantity", "quantity must be at least 1")
		}
		if i, ok := index[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged, nil
}

func (s *Service) resolve(ctx context.Context, userID int, d Delivery) (ShippingAddress, error) {
	if !contains(paymentMethods, d.PaymentMethod) {
		return ShippingAddress{}, apperr.Invalid("paymentMethod", "payment method must be one of "+strings.Join(paymentMethods, ", "))
	}
	if d.AddressID != nil {
		a, err := s.addresses.Get(ctx, userID, *d.AddressID)
		if err != nil {
			return ShippingAddress{}, err
		}
		return ShippingAddress{Street: a.Street, City: a.City, State: a.State, Pincode: a.Pincode, Country: a.Country, Phone: a.Phone}, nil
	}
	if d.Address == nil {
		return ShippingAddress{}, apperr.Invalid("address", "address or addressId is required")
	}

	a := *d.Address
	errs := map[string]string{}
	for field, v := range map[string]*string{"address.street": &a.Street, "address.city": &a.City, "address.state": &a.State, "address.pincode": &a.Pincode} {
		*v = strings.TrimSpace(*v)
		if *v == "" {
			errs[field] = "required"
		}
	}
	if len(errs) > 0 {
		return ShippingAddress{}, apperr.Validation(errs)
	}
	if strings.TrimSpace(a.Country) == "" {
		a.Country = address.DefaultCountry
	}
	return a, nil
}
