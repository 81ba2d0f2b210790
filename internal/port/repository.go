package port

import (
	"context"

	"github.com/avolkova/fix-exchange/internal/domain"
)

// Repository persists orders and the execution ledger. The engine writes
// best-effort on its hot path; reads happen on startup to rebuild the book
// and reseed the id sequence.
type Repository interface {
	SaveOrder(ctx context.Context, o *domain.Order) error
	MarkFilled(ctx context.Context, orderID uint64) error
	MarkCancelled(ctx context.Context, orderID uint64) error
	SaveExecution(ctx context.Context, ex domain.Execution) error
	LoadOpenOrders(ctx context.Context, symbol string) ([]*domain.Order, error)
	ListSymbols(ctx context.Context) ([]string, error)
	MaxOrderID(ctx context.Context) (uint64, error)
}
