package review

import (
	"context"
	"math"
	"sync"
)

// RatingSink receives recomputed product ratings.
type RatingSink interface {
	SetRating(ctx context.Context, productID int, average float64, count int) error
}

// StatsSource folds the reviews of one product.
type StatsSource interface {
	Stats(ctx context.Context, productID int) (Stats, error)
}

// Aggregator recomputes a product's rating from the full review set. Calls
// for the same product are serialized so a slower recompute cannot store a
// result older than one that already finished.
type Aggregator struct {
	reviews  StatsSource
	products RatingSink

	mu    sync.Mutex
	locks map[int]*productLock
}

type productLock struct {
	sync.Mutex
	refs int
}

func NewAggregator(reviews StatsSource, products RatingSink) *Aggregator {
	return &Aggregator{reviews: reviews, products: products, locks: make(map[int]*productLock)}
}

func (a *Aggregator) Recompute(ctx context.Context, productID int) (Stats, error) {
	unlock := a.lock(productID)
	defer unlock()

	s, err := a.reviews.Stats(ctx, productID)
	if err != nil {
		return Stats{}, err
	}
	s.Average = math.Round(s.Average*100) / 100
	if err := a.products.SetRating(ctx, productID, s.Average, s.Count); err != nil {
		return Stats{}, err
	}
	return s, nil
}

func (a *Aggregator) lock(productID int) func() {
	a.mu.Lock()
	l, ok := a.locks[productID]
	if !ok {
		l = &productLock{}
		a.locks[productID] = l
	}
	l.refs++
	a.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		a.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(a.locks, productID)
		}
		a.mu.Unlock()
	}
}
