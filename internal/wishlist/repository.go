package wishlist

import (
	"context"
	"sync"

	"github.com/wichananm65/juice-shop-backend/internal/apperr"
)

var (
	ErrAlreadyInWishlist = apperr.New(apperr.ErrConflict, "product already in wishlist")
	ErrNotInWishlist     = apperr.New(apperr.ErrNotFound, "product not in wishlist")
)

// Repository keeps one ordered, duplicate-free set of product ids per user.
type Repository interface {
	Add(ctx context.Context, userID, productID int) ([]int, error)
	Remove(ctx context.Context, userID, productID int) ([]int, error)
	ProductIDs(ctx context.Context, userID int) ([]int, error)
	Clear(ctx context.Context, userID int) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	lists map[int][]int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{lists: make(map[int][]int)}
}

func (r *InMemoryRepository) Add(_ context.Context, userID, productID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pid := range r.lists[userID] {
		if pid == productID {
			return nil, ErrAlreadyInWishlist
		}
	}
	r.lists[userID] = append(r.lists[userID], productID)
	return append([]int(nil), r.lists[userID]...), nil
}

func (r *InMemoryRepository) Remove(_ context.Context, userID, productID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.lists[userID]
	for i, pid := range ids {
		if pid == productID {
			kept := make([]int, 0, len(ids)-1)
			kept = append(kept, ids[:i]...)
			kept = append(kept, ids[i+1:]...)
			r.lists[userID] = kept
			return append([]int(nil), kept...), nil
		}
	}
	return nil, ErrNotInWishlist
}

func (r *InMemoryRepository) ProductIDs(_ context.Context, userID int) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]int{}, r.lists[userID]...), nil
}

func (r *InMemoryRepository) Clear(_ context.Context, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lists, userID)
	return nil
}
