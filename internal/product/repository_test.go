package product

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
)

func seedRepo() *InMemoryRepository {
	return NewInMemoryRepository([]Product{
		{ID: 1, Name: "Carrot Glow", Category: "skin", Price: decimal.NewFromInt(100), Stock: 10},
		{ID: 2, Name: "Beet Boost", Category: "energy", Price: decimal.NewFromInt(50), Stock: 5},
	})
}

func TestReserveStock_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo()

	_, err := repo.ReserveStock(ctx, []StockRequest{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 6}})
	var se *apperr.InsufficientStockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 2, se.ProductID)
	assert.Equal(t, 6, se.Requested)
	assert.Equal(t, 5, se.Available)

	p1, _ := repo.GetByID(ctx, 1)
	assert.Equal(t, 10, p1.Stock, "no line may be decremented when one fails")

	_, err = repo.ReserveStock(ctx, []StockRequest{{ProductID: 1, Quantity: 1}, {ProductID: 99, Quantity: 1}})
	assert.ErrorIs(t, err, ErrNotFound)
	p1, _ = repo.GetByID(ctx, 1)
	assert.Equal(t, 10, p1.Stock)

	snap, err := repo.ReserveStock(ctx, []StockRequest{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, "Carrot Glow", snap[0].Name)
	p1, _ = repo.GetByID(ctx, 1)
	p2, _ := repo.GetByID(ctx, 2)
	assert.Equal(t, 8, p1.Stock)
	assert.Equal(t, 4, p2.Stock)

	require.NoError(t, repo.RestoreStock(ctx, []StockRequest{{ProductID: 1, Quantity: 2}, {ProductID: 77, Quantity: 1}}))
	p1, _ = repo.GetByID(ctx, 1)
	assert.Equal(t, 10, p1.Stock)
}

func TestList_FilterAndPaging(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo()
	_, _ = repo.Create(ctx, Product{Name: "Citrus Shield", Category: "immunity"})

	all, err := repo.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Citrus Shield", all[0].Name, "newest first")

	energy, _ := repo.List(ctx, Filter{Category: "energy"})
	require.Len(t, energy, 1)
	assert.Equal(t, 2, energy[0].ID)

	byName, _ := repo.List(ctx, Filter{Query: "GLOW"})
	require.Len(t, byName, 1)

	page, _ := repo.List(ctx, Filter{Limit: 1, Offset: 1})
	require.Len(t, page, 1)

	empty, _ := repo.List(ctx, Filter{Offset: 10})
	assert.Empty(t, empty)
}

func TestUpdate_KeepsRating(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo()
	require.NoError(t, repo.SetRating(ctx, 1, 4.5, 2))

	p, _ := repo.GetByID(ctx, 1)
	p.Name = "Carrot Glow+"
	p.AverageRating = 0
	updated, err := repo.Update(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 4.5, updated.AverageRating)
	assert.Equal(t, 2, updated.ReviewCount)
}
