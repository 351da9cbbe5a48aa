package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getCartQuery = `SELECT items, total_price, discount, final_price, updated_at FROM carts WHERE user_id = $1`
	saveCartQuery = `
		INSERT INTO carts (user_id, items, total_price, discount, final_price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET items = EXCLUDED.items, total_price = EXCLUDED.total_price,
			discount = EXCLUDED.discount, final_price = EXCLUDED.final_price, updated_at = now()
		RETURNING updated_at
	`
	deleteCartQuery = `DELETE FROM carts WHERE user_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID int) (Cart, error) {
	var (
		c   = Cart{UserID: userID}
		raw []byte
	)
	err := r.db.QueryRowContext(ctx, getCartQuery, userID).
		Scan(&raw, &c.TotalPrice, &c.Discount, &c.FinalPrice, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return empty(userID), nil
	}
	if err != nil {
		return Cart{}, err
	}
	if err := json.Unmarshal(raw, &c.Items); err != nil {
		return Cart{}, err
	}
	if c.Items == nil {
		c.Items = []Line{}
	}
	return c, nil
}

func (r *PostgresRepository) Save(ctx context.Context, c Cart) (Cart, error) {
	items, err := json.Marshal(c.Items)
	if err != nil {
		return Cart{}, err
	}
	err = r.db.QueryRowContext(ctx, saveCartQuery, c.UserID, string(items), c.TotalPrice, c.Discount, c.FinalPrice).
		Scan(&c.UpdatedAt)
	return c, err
}

func (r *PostgresRepository) Delete(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx, deleteCartQuery, userID)
	return err
}
