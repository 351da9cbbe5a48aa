package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const productColumns = `id, name, category, description, price, stock, ingredients, benefits, images, average_rating, review_count, created_at, updated_at`

const (
	listProductsQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1 = '' OR category = $1)
			AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	countProductsQuery   = `SELECT COUNT(*) FROM products`
	getProductQuery      = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	listProductsByIDs    = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::int[]) ORDER BY array_position($1::int[], id)`
	insertProductQuery   = `
		INSERT INTO products (name, category, description, price, stock, ingredients, benefits, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + productColumns
	updateProductQuery = `
		UPDATE products
		SET name = $2, category = $3, description = $4, price = $5, stock = $6,
			ingredients = $7, benefits = $8, images = $9, updated_at = now()
		WHERE id = $1
		RETURNING ` + productColumns
	deleteProductQuery = `DELETE FROM products WHERE id = $1`
	setRatingQuery     = `UPDATE products SET average_rating = $2, review_count = $3 WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	var limit sql.NullInt64
	if f.Limit > 0 {
		limit = sql.NullInt64{Int64: int64(f.Limit), Valid: true}
	}
	rows, err := r.db.QueryContext(ctx, listProductsQuery, f.Category, f.Query, limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countProductsQuery).Scan(&n)
	return n, err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	rows, err := r.db.QueryContext(ctx, listProductsByIDs, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	ingredients, err := json.Marshal(nonNilIngredients(p.Ingredients))
	if err != nil {
		return Product{}, err
	}
	return scanProduct(r.db.QueryRowContext(ctx, insertProductQuery,
		p.Name, p.Category, p.Description, p.Price, p.Stock,
		string(ingredients), pq.Array(nonNil(p.Benefits)), pq.Array(nonNil(p.Images)),
	))
}

// Update writes the editable fields. Stock set here is absolute; order
// placement never goes through this path.
func (r *PostgresRepository) Update(ctx context.Context, p Product) (Product, error) {
	ingredients, err := json.Marshal(nonNilIngredients(p.Ingredients))
	if err != nil {
		return Product{}, err
	}
	updated, err := scanProduct(r.db.QueryRowContext(ctx, updateProductQuery,
		p.ID, p.Name, p.Category, p.Description, p.Price, p.Stock,
		string(ingredients), pq.Array(nonNil(p.Benefits)), pq.Array(nonNil(p.Images)),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return updated, err
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteProductQuery, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *PostgresRepository) SetRating(ctx context.Context, id int, average float64, count int) error {
	res, err := r.db.ExecContext(ctx, setRatingQuery, id, average, count)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProducts(rows *sql.Rows) ([]Product, error) {
	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(scanner rowScanner) (Product, error) {
	var (
		p           Product
		ingredients []byte
		benefits    pq.StringArray
		images      pq.StringArray
	)
	err := scanner.Scan(&p.ID, &p.Name, &p.Category, &p.Description, &p.Price, &p.Stock,
		&ingredients, &benefits, &images, &p.AverageRating, &p.ReviewCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	if len(ingredients) > 0 {
		if err := json.Unmarshal(ingredients, &p.Ingredients); err != nil {
			return Product{}, err
		}
	}
	p.Ingredients = nonNilIngredients(p.Ingredients)
	p.Benefits = nonNil(benefits)
	p.Images = nonNil(images)
	return p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilIngredients(s []Ingredient) []Ingredient {
	if s == nil {
		return []Ingredient{}
	}
	return s
}
