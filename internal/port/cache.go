package port

import (
	"context"

	"github.com/avolkova/fix-exchange/internal/domain"
)

// Cache holds the latest per-symbol book snapshot for read paths that do not
// need to enter the engine lock.
type Cache interface {
	SetBook(ctx context.Context, snapshot *domain.BookSnapshot) error
	GetBook(ctx context.Context, symbol string) (*domain.BookSnapshot, error)
	Invalidate(ctx context.Context, symbol string) error
}
