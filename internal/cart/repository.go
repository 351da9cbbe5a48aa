package cart

import (
	"context"
	"sync"
	"time"

	"github.com/wichananm65/juice-shop-backend/internal/apperr"
)

var (
	ErrItemNotFound  = apperr.New(apperr.ErrNotFound, "product is not in the cart")
	ErrInvalidAction = apperr.Invalid("action", "action must be increase or decrease")
)

// Repository stores one cart per user. Get returns an empty cart when the
// user has none.
type Repository interface {
	Get(ctx context.Context, userID int) (Cart, error)
	Save(ctx context.Context, c Cart) (Cart, error)
	Delete(ctx context.Context, userID int) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[int]Cart
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{carts: make(map[int]Cart)}
}

func (r *InMemoryRepository) Get(_ context.Context, userID int) (Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.carts[userID]
	if !ok {
		return empty(userID), nil
	}
	return clone(c), nil
}

func (r *InMemoryRepository) Save(_ context.Context, c Cart) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.UpdatedAt = time.Now().UTC()
	r.carts[c.UserID] = clone(c)
	return c, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

func clone(c Cart) Cart {
	c.Items = append([]Line(nil), c.Items...)
	if c.Items == nil {
		c.Items = []Line{}
	}
	return c
}
