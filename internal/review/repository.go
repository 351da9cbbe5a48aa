package review

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/juice-shop-backend/internal/apperr"
)

var (
	ErrNotFound        = apperr.New(apperr.ErrNotFound, "review not found")
	ErrAlreadyReviewed = apperr.New(apperr.ErrConflict, "you have already reviewed this product")
	ErrNotPurchased    = apperr.New(apperr.ErrForbidden, "only customers with a delivered order of this product can review it")
	ErrNotAuthor       = apperr.New(apperr.ErrForbidden, "review belongs to another user")
)

// Repository stores reviews. Create fails with ErrAlreadyReviewed when the
// user already reviewed the product.
type Repository interface {
	Create(ctx context.Context, r Review) (Review, error)
	GetByID(ctx context.Context, id int) (Review, error)
	ListByProduct(ctx context.Context, productID int) ([]Review, error)
	Update(ctx context.Context, r Review) (Review, error)
	Delete(ctx context.Context, id int) error
	// DeleteByUser removes every review written by userID and returns them.
	DeleteByUser(ctx context.Context, userID int) ([]Review, error)
	Stats(ctx context.Context, productID int) (Stats, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu      sync.RWMutex
	reviews []Review
	nextID  int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (m *InMemoryRepository) Create(_ context.Context, r Review) (Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.reviews {
		if existing.UserID == r.UserID && existing.ProductID == r.ProductID {
			return Review{}, ErrAlreadyReviewed
		}
	}
	r.ID = m.nextID
	m.nextID++
	r.CreatedAt = time.Now().UTC()
	r.UpdatedAt = r.CreatedAt
	m.reviews = append(m.reviews, r)
	return r, nil
}

func (m *InMemoryRepository) GetByID(_ context.Context, id int) (Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.indexOf(id); i >= 0 {
		return m.reviews[i], nil
	}
	return Review{}, ErrNotFound
}

func (m *InMemoryRepository) ListByProduct(_ context.Context, productID int) ([]Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Review, 0)
	for _, r := range m.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *InMemoryRepository) Update(_ context.Context, r Review) (Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(r.ID)
	if i < 0 {
		return Review{}, ErrNotFound
	}
	r.CreatedAt = m.reviews[i].CreatedAt
	r.UpdatedAt = time.Now().UTC()
	m.reviews[i] = r
	return r, nil
}

func (m *InMemoryRepository) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	m.reviews = append(m.reviews[:i], m.reviews[i+1:]...)
	return nil
}

func (m *InMemoryRepository) DeleteByUser(_ context.Context, userID int) ([]Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := make([]Review, 0)
	kept := m.reviews[:0]
	for _, r := range m.reviews {
		if r.UserID == userID {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	m.reviews = kept
	return removed, nil
}

func (m *InMemoryRepository) Stats(_ context.Context, productID int) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var s Stats
	sum := 0
	for _, r := range m.reviews {
		if r.ProductID == productID {
			sum += r.Rating
			s.Count++
		}
	}
	if s.Count > 0 {
		s.Average = float64(sum) / float64(s.Count)
	}
	return s, nil
}

func (m *InMemoryRepository) indexOf(id int) int {
	for i, r := range m.reviews {
		if r.ID == id {
			return i
		}
	}
	return -1
}
