package port

import (
	"context"

	"github.com/avolkova/fix-exchange/internal/domain"
)

// ExecutionPublisher pushes executions to downstream consumers (market data,
// clearing). Publishing failures must not block or fail matching.
type ExecutionPublisher interface {
	Publish(ctx context.Context, ex domain.Execution) error
	Close() error
}
