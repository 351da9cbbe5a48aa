package address

import (
	"context"
	"database/sql"
	"errors"
)

type PostgresRepository struct {
	db *sql.DB
}

const addressColumns = `id, user_id, label, street, city, state, pincode, country, phone, is_default, created_at, updated_at`

const (
	listAddressesQuery = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, id`
	getAddressQuery    = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 AND id = $2`
	clearDefaultQuery  = `UPDATE addresses SET is_default = false WHERE user_id = $1 AND is_default`
	insertAddressQuery = `
		INSERT INTO addresses (user_id, label, street, city, state, pincode, country, phone, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + addressColumns
	updateAddressQuery = `
		UPDATE addresses
		SET label = $3, street = $4, city = $5, state = $6, pincode = $7, country = $8, phone = $9,
			is_default = $10, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING ` + addressColumns
	deleteAddressQuery = `DELETE FROM addresses WHERE user_id = $1 AND id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAddress(row rowScanner) (Address, error) {
	var a Address
	err := row.Scan(&a.ID, &a.UserID, &a.Label, &a.Street, &a.City, &a.State, &a.Pincode, &a.Country, &a.Phone, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *PostgresRepository) List(ctx context.Context, userID int) ([]Address, error) {
	rows, err := r.db.QueryContext(ctx, listAddressesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id int) (Address, error) {
	a, err := scanAddress(r.db.QueryRowContext(ctx, getAddressQuery, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Address{}, ErrNotFound
	}
	return a, err
}

func (r *PostgresRepository) Create(ctx context.Context, a Address) (Address, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Address{}, err
	}
	defer tx.Rollback()

	if a.IsDefault {
		if _, err := tx.ExecContext(ctx, clearDefaultQuery, a.UserID); err != nil {
			return Address{}, err
		}
	}
	created, err := scanAddress(tx.QueryRowContext(ctx, insertAddressQuery,
		a.UserID, a.Label, a.Street, a.City, a.State, a.Pincode, a.Country, a.Phone, a.IsDefault))
	if err != nil {
		return Address{}, err
	}
	return created, tx.Commit()
}

func (r *PostgresRepository) Update(ctx context.Context, a Address) (Address, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Address{}, err
	}
	defer tx.Rollback()

	if a.IsDefault {
		if _, err := tx.ExecContext(ctx, clearDefaultQuery, a.UserID); err != nil {
			return Address{}, err
		}
	}
	updated, err := scanAddress(tx.QueryRowContext(ctx, updateAddressQuery,
		a.UserID, a.ID, a.Label, a.Street, a.City, a.State, a.Pincode, a.Country, a.Phone, a.IsDefault))
	if errors.Is(err, sql.ErrNoRows) {
		return Address{}, ErrNotFound
	}
	if err != nil {
		return Address{}, err
	}
	return updated, tx.Commit()
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id int) error {
	res, err := r.db.ExecContext(ctx, deleteAddressQuery, userID, id)
	if err != nil {
		return err
	}
	cnt, _ := res.RowsAffected()
	if cnt == 0 {
		return ErrNotFound
	}
	return nil
}
