package recommended

import (
	"context"
	"database/sql"
	"sort"

	"github.com/wichananm65/juice-shop-backend/internal/product"
)

type Repository interface {
	TopRated(ctx context.Context, limit, offset int) ([]RecommendedItem, error)
}

// InMemoryRepository ranks whatever the product repository holds.
type InMemoryRepository struct {
	products product.Repository
}

func NewInMemoryRepository(products product.Repository) *InMemoryRepository {
	return &InMemoryRepository{products: products}
}

func (r *InMemoryRepository) TopRated(ctx context.Context, limit, offset int) ([]RecommendedItem, error) {
	all, err := r.products.List(ctx, product.Filter{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.AverageRating != b.AverageRating {
			return a.AverageRating > b.AverageRating
		}
		if a.ReviewCount != b.ReviewCount {
			return a.ReviewCount > b.ReviewCount
		}
		return a.ID < b.ID
	})
	if offset >= len(all) {
		return []RecommendedItem{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	out := make([]RecommendedItem, 0, len(all))
	for _, p := range all {
		item := RecommendedItem{
			ProductID:     p.ID,
			Name:          p.Name,
			Category:      p.Category,
			Price:         p.Price,
			AverageRating: p.AverageRating,
			ReviewCount:   p.ReviewCount,
		}
		if len(p.Images) > 0 {
			img := p.Images[0]
			item.Image = &img
		}
		out = append(out, item)
	}
	return out, nil
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const topRatedQuery = `
	SELECT id, name, category, price, images[1], average_rating, review_count
	FROM products
	ORDER BY average_rating DESC, review_count DESC, id ASC
	LIMIT $1 OFFSET $2
`

func (r *PostgresRepository) TopRated(ctx context.Context, limit, offset int) ([]RecommendedItem, error) {
	rows, err := r.db.QueryContext(ctx, topRatedQuery, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]RecommendedItem, 0)
	for rows.Next() {
		var (
			it    RecommendedItem
			image sql.NullString
		)
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Category, &it.Price, &image, &it.AverageRating, &it.ReviewCount); err != nil {
			return nil, err
		}
		if image.Valid {
			it.Image = &image.String
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
