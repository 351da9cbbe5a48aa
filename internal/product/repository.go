package product

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/juice-shop-backend/internal/apperr"
)

var ErrNotFound = apperr.New(apperr.ErrNotFound, "product not found")

type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	Count(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id int) (Product, error)
	ListByIDs(ctx context.Context, ids []int) ([]Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id int) error
	SetRating(ctx context.Context, id int, average float64, count int) error
}

// InMemoryRepository is used for tests and local scenarios. It also acts as
// the stock ledger for the in-memory order repository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	products []Product
	nextID   int
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{products: make([]Product, 0, len(seed)), nextID: 1}
	for _, p := range seed {
		r.products = append(r.products, p)
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context, f Filter) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(f.Query)
	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if f.Offset >= len(out) {
		return []Product{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products), nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.products[i], nil
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) ListByIDs(_ context.Context, ids []int) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if i := r.indexOf(id); i >= 0 {
			out = append(out, r.products[i])
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Create(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.products = append(r.products, p)
	return p, nil
}

func (r *InMemoryRepository) Update(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(p.ID)
	if i < 0 {
		return Product{}, ErrNotFound
	}
	cur := r.products[i]
	p.AverageRating, p.ReviewCount = cur.AverageRating, cur.ReviewCount
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	r.products[i] = p
	return p, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.products = append(r.products[:i], r.products[i+1:]...)
	return nil
}

func (r *InMemoryRepository) SetRating(_ context.Context, id int, average float64, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.products[i].AverageRating = average
	r.products[i].ReviewCount = count
	return nil
}

// ReserveStock decrements stock for every request or for none of them. It
// returns the products as they were before the decrement, in request order.
func (r *InMemoryRepository) ReserveStock(_ context.Context, reqs []StockRequest) ([]Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := make([]int, len(reqs))
	snapshot := make([]Product, len(reqs))
	for n, req := range reqs {
		i := r.indexOf(req.ProductID)
		if i < 0 {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, req.ProductID)
		}
		p := r.products[i]
		if req.Quantity > p.Stock {
			return nil, &apperr.InsufficientStockError{ProductID: p.ID, Name: p.Name, Requested: req.Quantity, Available: p.Stock}
		}
		idx[n] = i
		snapshot[n] = p
	}
	for n, req := range reqs {
		r.products[idx[n]].Stock -= req.Quantity
	}
	return snapshot, nil
}

// RestoreStock adds quantities back. Products deleted in the meantime are skipped.
func (r *InMemoryRepository) RestoreStock(_ context.Context, reqs []StockRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, req := range reqs {
		if i := r.indexOf(req.ProductID); i >= 0 {
			r.products[i].Stock += req.Quantity
		}
	}
	return nil
}

func (r *InMemoryRepository) indexOf(id int) int {
	for i, p := range r.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
