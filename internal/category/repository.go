package category

import (
	"context"
	"database/sql"
)

// Repository reports how many products each category holds.
type Repository interface {
	Counts(ctx context.Context) (map[string]int, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	counts map[string]int
}

func NewInMemoryRepository(counts map[string]int) *InMemoryRepository {
	return &InMemoryRepository{counts: counts}
}

func (r *InMemoryRepository) Counts(_ context.Context) (map[string]int, error) {
	out := make(map[string]int, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out, nil
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM products GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			name  string
			count int
		)
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		out[name] = count
	}
	return out, rows.Err()
}
