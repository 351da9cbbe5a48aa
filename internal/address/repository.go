package address

import (
	"context"
	"sync"
	"time"

	"github.com/wichananm65/juice-shop-backend/internal/apperr"
)

var ErrNotFound = apperr.New(apperr.ErrNotFound, "address not found")

// Repository keeps at most one default address per user: saving an address
// with IsDefault set clears the flag on the user's other addresses.
type Repository interface {
	List(ctx context.Context, userID int) ([]Address, error)
	Get(ctx context.Context, userID, id int) (Address, error)
	Create(ctx context.Context, a Address) (Address, error)
	Update(ctx context.Context, a Address) (Address, error)
	Delete(ctx context.Context, userID, id int) error
}

// InMemoryRepository for tests
type InMemoryRepository struct {
	mu     sync.Mutex
	data   []Address
	nextID int
}

func NewInMemoryRepository(seed []Address) *InMemoryRepository {
	r := &InMemoryRepository{nextID: 1}
	for _, a := range seed {
		r.data = append(r.data, a)
		if a.ID >= r.nextID {
			r.nextID = a.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context, userID int) ([]Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Address, 0)
	for _, a := range r.data {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Get(_ context.Context, userID, id int) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(userID, id); i >= 0 {
		return r.data[i], nil
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextID
	r.nextID++
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	if a.IsDefault {
		r.clearDefault(a.UserID)
	}
	r.data = append(r.data, a)
	return a, nil
}

func (r *InMemoryRepository) Update(_ context.Context, a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(a.UserID, a.ID)
	if i < 0 {
		return Address{}, ErrNotFound
	}
	if a.IsDefault {
		r.clearDefault(a.UserID)
	}
	a.CreatedAt = r.data[i].CreatedAt
	a.UpdatedAt = time.Now().UTC()
	r.data[i] = a
	return a, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, userID, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(userID, id)
	if i < 0 {
		return ErrNotFound
	}
	r.data = append(r.data[:i], r.data[i+1:]...)
	return nil
}

func (r *InMemoryRepository) clearDefault(userID int) {
	for i := range r.data {
		if r.data[i].UserID == userID {
			r.data[i].IsDefault = false
		}
	}
}

func (r *InMemoryRepository) indexOf(userID, id int) int {
	for i, a := range r.data {
		if a.UserID == userID && a.ID == id {
			return i
		}
	}
	return -1
}
