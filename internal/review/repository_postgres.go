package review

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/wichananm65/juice-shop-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

const reviewColumns = `id, user_id, product_id, rating, comment, images, created_at, updated_at`

const (
	insertReviewQuery = `
		INSERT INTO reviews (user_id, product_id, rating, comment, images)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + reviewColumns
	getReviewQuery    = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	listReviewsQuery  = `SELECT ` + reviewColumns + ` FROM reviews WHERE product_id = $1 ORDER BY created_at DESC, id DESC`
	updateReviewQuery = `
		UPDATE reviews SET rating = $2, comment = $3, images = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + reviewColumns
	deleteReviewQuery = `DELETE FROM reviews WHERE id = $1`
	deleteByUserQuery = `DELETE FROM reviews WHERE user_id = $1 RETURNING ` + reviewColumns
	statsQuery        = `SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*) FROM reviews WHERE product_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (Review, error) {
	var (
		r      Review
		images pq.StringArray
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.ProductID, &r.Rating, &r.Comment, &images, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return Review{}, err
	}
	r.Images = []string(images)
	if r.Images == nil {
		r.Images = []string{}
	}
	return r, nil
}

func (p *PostgresRepository) Create(ctx context.Context, r Review) (Review, error) {
	created, err := scanReview(p.db.QueryRowContext(ctx, insertReviewQuery, r.UserID, r.ProductID, r.Rating, r.Comment, pq.Array(r.Images)))
	if database.IsUniqueViolation(err) {
		return Review{}, ErrAlreadyReviewed
	}
	return created, err
}

func (p *PostgresRepository) GetByID(ctx context.Context, id int) (Review, error) {
	r, err := scanReview(p.db.QueryRowContext(ctx, getReviewQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Review{}, ErrNotFound
	}
	return r, err
}

func (p *PostgresRepository) ListByProduct(ctx context.Context, productID int) ([]Review, error) {
	rows, err := p.db.QueryContext(ctx, listReviewsQuery, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Review, 0)
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresRepository) Update(ctx context.Context, r Review) (Review, error) {
	updated, err := scanReview(p.db.QueryRowContext(ctx, updateReviewQuery, r.ID, r.Rating, r.Comment, pq.Array(r.Images)))
	if errors.Is(err, sql.ErrNoRows) {
		return Review{}, ErrNotFound
	}
	return updated, err
}

func (p *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := p.db.ExecContext(ctx, deleteReviewQuery, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresRepository) DeleteByUser(ctx context.Context, userID int) ([]Review, error) {
	rows, err := p.db.QueryContext(ctx, deleteByUserQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Review, 0)
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresRepository) Stats(ctx context.Context, productID int) (Stats, error) {
	var s Stats
	err := p.db.QueryRowContext(ctx, statsQuery, productID).Scan(&s.Average, &s.Count)
	return s, err
}
