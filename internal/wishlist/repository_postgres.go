package wishlist

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	// addQuery appends only when the id is absent; a duplicate matches no
	// row and returns nothing.
	addQuery = `
		INSERT INTO wishlists (user_id, product_ids) VALUES ($1, ARRAY[$2::int])
		ON CONFLICT (user_id) DO UPDATE
		SET product_ids = array_append(wishlists.product_ids, $2::int), updated_at = now()
		WHERE NOT ($2::int = ANY(wishlists.product_ids))
		RETURNING product_ids
	`
	removeQuery = `
		UPDATE wishlists
		SET product_ids = array_remove(product_ids, $2::int), updated_at = now()
		WHERE user_id = $1 AND $2::int = ANY(product_ids)
		RETURNING product_ids
	`
	listQuery  = `SELECT product_ids FROM wishlists WHERE user_id = $1`
	clearQuery = `DELETE FROM wishlists WHERE user_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, userID, productID int) ([]int, error) {
	var arr pq.Int64Array
	err := r.db.QueryRowContext(ctx, addQuery, userID, productID).Scan(&arr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlreadyInWishlist
	}
	if err != nil {
		return nil, err
	}
	return toInts(arr), nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, productID int) ([]int, error) {
	var arr pq.Int64Array
	err := r.db.QueryRowContext(ctx, removeQuery, userID, productID).Scan(&arr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotInWishlist
	}
	if err != nil {
		return nil, err
	}
	return toInts(arr), nil
}

func (r *PostgresRepository) ProductIDs(ctx context.Context, userID int) ([]int, error) {
	var arr pq.Int64Array
	err := r.db.QueryRowContext(ctx, listQuery, userID).Scan(&arr)
	if errors.Is(err, sql.ErrNoRows) {
		return []int{}, nil
	}
	if err != nil {
		return nil, err
	}
	return toInts(arr), nil
}

func (r *PostgresRepository) Clear(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx, clearQuery, userID)
	return err
}

func toInts(arr pq.Int64Array) []int {
	out := make([]int, len(arr))
	for i, v := range arr {
		out[i] = int(v)
	}
	return out
}
