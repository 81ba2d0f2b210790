package in_memory

import (
	"context"
	"sync"

	"github.com/avolkova/fix-exchange/internal/domain"
	"github.com/avolkova/fix-exchange/internal/port"
)

var _ port.Cache = (*Cache)(nil)

type Cache struct {
	mu    sync.Mutex
	store map[string]*domain.BookSnapshot
}

func NewCache() *Cache {
	return &Cache{store: make(map[string]*domain.BookSnapshot)}
}

func (c *Cache) SetBook(ctx context.Context, snapshot *domain.BookSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copySnap := *snapshot
	c.store[snapshot.Symbol] = &copySnap
	return nil
}

func (c *Cache) GetBook(ctx context.Context, symbol string) (*domain.BookSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.store[symbol]
	if !ok {
		return nil, nil
	}
	copySnap := *snap
	return &copySnap, nil
}

func (c *Cache) Invalidate(ctx context.Context, symbol string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, symbol)
	return nil
}
