package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
	"github.com/wichananm65/juice-shop-backend/internal/product"
)

var (
	ErrNotFound          = apperr.New(apperr.ErrNotFound, "order not found")
	ErrNotOwner          = apperr.New(apperr.ErrForbidden, "order belongs to another user")
	ErrNotCancellable    = apperr.New(apperr.ErrConflict, "only placed or processing orders can be cancelled")
	ErrInvalidTransition = apperr.New(apperr.ErrConflict, "order status can only move forward")
	ErrStatusChanged     = apperr.New(apperr.ErrConflict, "order status changed concurrently")
	ErrEmptyOrder        = apperr.Invalid("items", "at least one item is required")
)

// Repository persists orders. Place and Cancel move stock and order state
// together: either both are applied or neither is.
type Repository interface {
	Place(ctx context.Context, userID int, lines []Line, addr ShippingAddress, method string) (Order, error)
	GetByID(ctx context.Context, id int) (Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, int, error)
	Cancel(ctx context.Context, id int) (Order, error)
	SetStatus(ctx context.Context, id int, from, to string) (Order, error)
	SetPaymentStatus(ctx context.Context, id int, status string) (Order, error)
	HasDelivered(ctx context.Context, userID, productID int) (bool, error)
	Count(ctx context.Context) (int, error)
	DeliveredRevenue(ctx context.Context) (decimal.Decimal, error)
	// UserTotals counts every order of userID and sums the final price of
	// those not cancelled.
	UserTotals(ctx context.Context, userID int) (int, decimal.Decimal, error)
}

// Inventory is the stock ledger used by the in-memory repository.
type Inventory interface {
	ReserveStock(ctx context.Context, reqs []product.StockRequest) ([]product.Product, error)
	RestoreStock(ctx context.Context, reqs []product.StockRequest) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu        sync.Mutex
	orders    []Order
	nextID    int
	inventory Inventory
}

func NewInMemoryRepository(inventory Inventory) *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, inventory: inventory}
}

func (r *InMemoryRepository) Place(ctx context.Context, userID int, lines []Line, addr ShippingAddress, method string) (Order, error) {
	snapshots, err := r.inventory.ReserveStock(ctx, stockRequests(lines))
	if err != nil {
		return Order{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	o := build(userID, lines, snapshots, addr, method)
	o.ID = r.nextID
	r.nextID++
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	r.orders = append(r.orders, o)
	return o, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(id); i >= 0 {
		return r.orders[i], nil
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) List(_ context.Context, f ListFilter) ([]Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Order, 0)
	for _, o := range r.orders {
		if f.UserID != 0 && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.OrderStatus != f.Status {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := len(out)
	if f.Offset >= total {
		return []Order{}, total, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r *InMemoryRepository) Cancel(ctx context.Context, id int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return Order{}, ErrNotFound
	}
	if !cancellable(r.orders[i].OrderStatus) {
		return Order{}, ErrNotCancellable
	}
	if err := r.inventory.RestoreStock(ctx, itemRequests(r.orders[i].Items)); err != nil {
		return Order{}, err
	}
	r.orders[i].OrderStatus = StatusCancelled
	r.orders[i].UpdatedAt = time.Now().UTC()
	return r.orders[i], nil
}

func (r *InMemoryRepository) SetStatus(_ context.Context, id int, from, to string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return Order{}, ErrNotFound
	}
	if r.orders[i].OrderStatus != from {
		return Order{}, ErrStatusChanged
	}
	r.orders[i].OrderStatus = to
	r.orders[i].UpdatedAt = time.Now().UTC()
	return r.orders[i], nil
}

func (r *InMemoryRepository) SetPaymentStatus(_ context.Context, id int, status string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return Order{}, ErrNotFound
	}
	r.orders[i].PaymentStatus = status
	r.orders[i].UpdatedAt = time.Now().UTC()
	return r.orders[i], nil
}

func (r *InMemoryRepository) HasDelivered(_ context.Context, userID, productID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.UserID == userID && o.OrderStatus == StatusDelivered && o.hasProduct(productID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders), nil
}

func (r *InMemoryRepository) DeliveredRevenue(_ context.Context) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, o := range r.orders {
		if o.OrderStatus == StatusDelivered {
			sum = sum.Add(o.FinalPrice)
		}
	}
	return sum, nil
}

func (r *InMemoryRepository) UserTotals(_ context.Context, userID int) (int, decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, spent := 0, decimal.Zero
	for _, o := range r.orders {
		if o.UserID != userID {
			continue
		}
		n++
		if o.OrderStatus != StatusCancelled {
			spent = spent.Add(o.FinalPrice)
		}
	}
	return n, spent, nil
}

func (r *InMemoryRepository) indexOf(id int) int {
	for i, o := range r.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}
