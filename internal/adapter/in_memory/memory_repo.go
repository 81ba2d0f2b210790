package in_memory

import (
	"context"
	"sort"
	"sync"

	"github.com/avolkova/fix-exchange/internal/domain"
	"github.com/avolkova/fix-exchange/internal/port"
)

var _ port.Repository = (*MemoryRepo)(nil)

type orderRecord struct {
	order  domain.Order
	status string
}

// MemoryRepo is the repository used in tests and when no Postgres is
// configured.
type MemoryRepo struct {
	mu         sync.Mutex
	orders     map[uint64]*orderRecord
	executions map[uint64]domain.Execution
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		orders:     make(map[uint64]*orderRecord),
		executions: make(map[uint64]domain.Execution),
	}
}

func (r *MemoryRepo) SaveOrder(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.orders[o.ID]; ok {
		rec.order.Quantity = o.Quantity
		return nil
	}
	r.orders[o.ID] = &orderRecord{order: *o, status: "OPEN"}
	return nil
}

func (r *MemoryRepo) MarkFilled(ctx context.Context, orderID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.orders[orderID]; ok {
		rec.order.Quantity = 0
		rec.status = "FILLED"
	}
	return nil
}

func (r *MemoryRepo) MarkCancelled(ctx context.Context, orderID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.orders[orderID]; ok && rec.status == "OPEN" {
		rec.status = "CANCELLED"
	}
	return nil
}

func (r *MemoryRepo) SaveExecution(ctx context.Context, ex domain.Execution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executions[ex.ID] = ex
	return nil
}

func (r *MemoryRepo) LoadOpenOrders(ctx context.Context, symbol string) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*domain.Order
	for _, rec := range r.orders {
		if rec.order.Symbol == symbol && rec.status == "OPEN" && rec.order.Quantity > 0 {
			o := rec.order
			res = append(res, &o)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *MemoryRepo) ListSymbols(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	for _, rec := range r.orders {
		if rec.status == "OPEN" {
			seen[rec.order.Symbol] = struct{}{}
		}
	}
	res := make([]string, 0, len(seen))
	for s := range seen {
		res = append(res, s)
	}
	sort.Strings(res)
	return res, nil
}

func (r *MemoryRepo) MaxOrderID(ctx context.Context) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var max uint64
	for id := range r.orders {
		if id > max {
			max = id
		}
	}
	return max, nil
}

// Executions returns the persisted ledger, used by tests.
func (r *MemoryRepo) Executions() []domain.Execution {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]domain.Execution, 0, len(r.executions))
	for _, ex := range r.executions {
		res = append(res, ex)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Status reports the persisted status of an order, used by tests.
func (r *MemoryRepo) Status(orderID uint64) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.orders[orderID]
	if !ok {
		return "", false
	}
	return rec.status, true
}
