package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
	"github.com/wichananm65/juice-shop-backend/internal/product"
)

type PostgresRepository struct {
	db *sql.DB
}

const orderColumns = `id, user_id, items, address, payment_method, payment_status, order_status, total_price, discount, final_price, created_at, updated_at`

const (
	// reserveStockQuery decrements only when enough stock is left, so two
	// placements can never both take the last unit.
	reserveStockQuery = `
		UPDATE products SET stock = stock - $1, updated_at = now()
		WHERE id = $2 AND stock >= $1
		RETURNING id, name, price
	`
	stockQuery        = `SELECT name, stock FROM products WHERE id = $1`
	restoreStockQuery = `UPDATE products SET stock = stock + $1, updated_at = now() WHERE id = $2`
	insertOrderQuery  = `
		INSERT INTO orders (user_id, items, address, payment_method, payment_status, order_status, total_price, discount, final_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	getOrderQuery   = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	listOrdersQuery = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1 = 0 OR user_id = $1) AND ($2 = '' OR order_status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	countFilteredQuery = `SELECT COUNT(*) FROM orders WHERE ($1 = 0 OR user_id = $1) AND ($2 = '' OR order_status = $2)`
	cancelOrderQuery   = `
		UPDATE orders SET order_status = 'cancelled', updated_at = now()
		WHERE id = $1 AND order_status IN ('placed', 'processing')
		RETURNING ` + orderColumns
	setStatusQuery = `
		UPDATE orders SET order_status = $3, updated_at = now()
		WHERE id = $1 AND order_status = $2
		RETURNING ` + orderColumns
	setPaymentQuery = `
		UPDATE orders SET payment_status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + orderColumns
	hasDeliveredQuery = `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE user_id = $1 AND order_status = 'delivered' AND items @> $2::jsonb
		)
	`
	countOrdersQuery = `SELECT COUNT(*) FROM orders`
	revenueQuery     = `SELECT COALESCE(SUM(final_price), 0) FROM orders WHERE order_status = 'delivered'`
	userTotalsQuery  = `
		SELECT COUNT(*), COALESCE(SUM(final_price) FILTER (WHERE order_status <> 'cancelled'), 0)
		FROM orders WHERE user_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		o           Order
		items, addr []byte
	)
	err := row.Scan(&o.ID, &o.UserID, &items, &addr, &o.PaymentMethod, &o.PaymentStatus, &o.OrderStatus,
		&o.TotalPrice, &o.Discount, &o.FinalPrice, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(addr, &o.Address); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Place reserves stock line by line inside one transaction, then prices and
// inserts the order. Any failure rolls back every decrement. Lines are
// reserved in product id order so concurrent placements lock rows in the
// same sequence.
func (r *PostgresRepository) Place(ctx context.Context, userID int, lines []Line, addr ShippingAddress, method string) (Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	seq := make([]int, len(lines))
	for i := range seq {
		seq[i] = i
	}
	sort.SliceStable(seq, func(a, b int) bool { return lines[seq[a]].ProductID < lines[seq[b]].ProductID })

	snapshots := make([]product.Product, len(lines))
	for _, i := range seq {
		l := lines[i]
		var p product.Product
		err := tx.QueryRowContext(ctx, reserveStockQuery, l.Quantity, l.ProductID).Scan(&p.ID, &p.Name, &p.Price)
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, shortfall(ctx, tx, l)
		}
		if err != nil {
			return Order{}, err
		}
		snapshots[i] = p
	}

	o := build(userID, lines, snapshots, addr, method)
	items, err := json.Marshal(o.Items)
	if err != nil {
		return Order{}, err
	}
	address, err := json.Marshal(o.Address)
	if err != nil {
		return Order{}, err
	}
	err = tx.QueryRowContext(ctx, insertOrderQuery, userID, string(items), string(address), o.PaymentMethod,
		o.PaymentStatus, o.OrderStatus, o.TotalPrice, o.Discount, o.FinalPrice).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	return o, tx.Commit()
}

// shortfall explains why a conditional decrement matched no row.
func shortfall(ctx context.Context, tx *sql.Tx, l Line) error {
	var (
		name  string
		stock int
	)
	err := tx.QueryRowContext(ctx, stockQuery, l.ProductID).Scan(&name, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: id %d", product.ErrNotFound, l.ProductID)
	}
	if err != nil {
		return err
	}
	return &apperr.InsufficientStockError{ProductID: l.ProductID, Name: name, Requested: l.Quantity, Available: stock}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, getOrderQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]Order, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, countFilteredQuery, f.UserID, f.Status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, listOrdersQuery, f.UserID, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

// Cancel flips a placed or processing order to cancelled and returns its
// stock in the same transaction.
func (r *PostgresRepository) Cancel(ctx context.Context, id int) (Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	o, err := scanOrder(tx.QueryRowContext(ctx, cancelOrderQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, r.whyUnchanged(ctx, tx, id, ErrNotCancellable)
	}
	if err != nil {
		return Order{}, err
	}
	for _, it := range o.Items {
		if _, err := tx.ExecContext(ctx, restoreStockQuery, it.Quantity, it.ProductID); err != nil {
			return Order{}, err
		}
	}
	return o, tx.Commit()
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id int, from, to string) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, setStatusQuery, id, from, to))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, r.whyUnchanged(ctx, r.db, id, ErrStatusChanged)
	}
	return o, err
}

func (r *PostgresRepository) SetPaymentStatus(ctx context.Context, id int, status string) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, setPaymentQuery, id, status))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// whyUnchanged returns ErrNotFound when the order does not exist and
// otherwise the given conflict.
func (r *PostgresRepository) whyUnchanged(ctx context.Context, q queryer, id int, conflict error) error {
	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return conflict
}

func (r *PostgresRepository) HasDelivered(ctx context.Context, userID, productID int) (bool, error) {
	probe, err := json.Marshal([]map[string]int{{"productId": productID}})
	if err != nil {
		return false, err
	}
	var ok bool
	err = r.db.QueryRowContext(ctx, hasDeliveredQuery, userID, string(probe)).Scan(&ok)
	return ok, err
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countOrdersQuery).Scan(&n)
	return n, err
}

func (r *PostgresRepository) DeliveredRevenue(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx, revenueQuery).Scan(&sum)
	return sum, err
}

func (r *PostgresRepository) UserTotals(ctx context.Context, userID int) (int, decimal.Decimal, error) {
	var (
		n     int
		spent decimal.Decimal
	)
	err := r.db.QueryRowContext(ctx, userTotalsQuery, userID).Scan(&n, &spent)
	return n, spent, err
}
