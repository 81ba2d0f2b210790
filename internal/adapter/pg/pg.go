package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avolkova/fix-exchange/internal/domain"
	"github.com/avolkova/fix-exchange/internal/port"
)

var _ port.Repository = (*Repo)(nil)

// Repo persists orders and executions in Postgres. Schema:
//
//	orders(id BIGINT PK, symbol TEXT, side TEXT, quantity BIGINT,
//	       price DOUBLE PRECISION, status TEXT, created_at TIMESTAMPTZ)
//	executions(id BIGINT PK, buy_order BIGINT, sell_order BIGINT,
//	           symbol TEXT, quantity BIGINT, price DOUBLE PRECISION,
//	           created_at TIMESTAMPTZ)
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo opens a pool; call Close when finished with the database.
func NewRepo(ctx context.Context, dsn string) (*Repo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

func (r *Repo) SaveOrder(ctx context.Context, o *domain.Order) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO orders(id, symbol, side, quantity, price, status, created_at)
VALUES($1,$2,$3,$4,$5,'OPEN',NOW())
ON CONFLICT (id) DO UPDATE SET
  quantity = EXCLUDED.quantity,
  status = EXCLUDED.status
`, int64(o.ID), o.Symbol, string(o.Side), int64(o.Quantity), o.Price)
	return err
}

func (r *Repo) MarkFilled(ctx context.Context, orderID uint64) error {
	_, err := r.pool.Exec(ctx, `
UPDATE orders SET quantity = 0, status = 'FILLED' WHERE id = $1
`, int64(orderID))
	return err
}

func (r *Repo) MarkCancelled(ctx context.Context, orderID uint64) error {
	_, err := r.pool.Exec(ctx, `
UPDATE orders SET status = 'CANCELLED' WHERE id = $1 AND status = 'OPEN'
`, int64(orderID))
	return err
}

func (r *Repo) SaveExecution(ctx context.Context, ex domain.Execution) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO executions(id, buy_order, sell_order, symbol, quantity, price, created_at)
VALUES($1,$2,$3,$4,$5,$6,NOW())
ON CONFLICT (id) DO NOTHING
`, int64(ex.ID), int64(ex.Buy.ID), int64(ex.Sell.ID), ex.Buy.Symbol, int64(ex.Quantity()), ex.Price())
	return err
}

// LoadOpenOrders returns open orders for a symbol ordered by id ASC, which is
// submission order.
func (r *Repo) LoadOpenOrders(ctx context.Context, symbol string) ([]*domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, symbol, side, quantity, price
FROM orders
WHERE symbol = $1 AND status = 'OPEN' AND quantity > 0
ORDER BY id ASC
`, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Order
	for rows.Next() {
		var (
			id, quantity int64
			side         string
			o            domain.Order
		)
		if err := rows.Scan(&id, &o.Symbol, &side, &quantity, &o.Price); err != nil {
			return nil, err
		}
		o.ID = uint64(id)
		o.Quantity = uint64(quantity)
		o.Side = domain.Side(side)
		res = append(res, &o)
	}
	return res, rows.Err()
}

func (r *Repo) ListSymbols(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT symbol FROM orders WHERE status = 'OPEN'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r *Repo) MaxOrderID(ctx context.Context) (uint64, error) {
	var max int64
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM orders`).Scan(&max); err != nil {
		return 0, err
	}
	return uint64(max), nil
}
