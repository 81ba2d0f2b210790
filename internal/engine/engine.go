package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/avolkova/fix-exchange/internal/core"
	"github.com/avolkova/fix-exchange/internal/domain"
	"github.com/avolkova/fix-exchange/internal/port"
)

// Engine serializes access to the Exchange and runs the side effects around
// matching: persistence, book cache refresh, execution publishing and the
// live feed. One engine-wide mutex keeps add+match atomic per call, so a
// cancel can never race a match in flight (the concurrency discipline from
// the core's contract).
type Engine struct {
	repo  port.Repository
	cache port.Cache
	pub   port.ExecutionPublisher
	log   *zap.Logger

	mu       sync.Mutex
	exchange *core.Exchange
	seq      *domain.Sequence
	orders   map[uint64]*domain.Order // every order accepted this run, for cancel-by-id

	subMu   sync.Mutex
	subs    map[uint64]chan domain.Execution
	nextSub uint64
}

func New(repo port.Repository, cache port.Cache, pub port.ExecutionPublisher, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		repo:     repo,
		cache:    cache,
		pub:      pub,
		log:      log,
		exchange: core.NewExchange(),
		seq:      domain.NewSequence(),
		orders:   make(map[uint64]*domain.Order),
		subs:     make(map[uint64]chan domain.Execution),
	}
}

// Sequence exposes the id generator so transports can mint orders.
func (e *Engine) Sequence() *domain.Sequence {
	return e.seq
}

// LoadOpenOrders rebuilds the book from persisted open orders on startup and
// fast-forwards the id sequence past everything already issued.
func (e *Engine) LoadOpenOrders(ctx context.Context) error {
	if e.repo == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	last, err := e.repo.MaxOrderID(ctx)
	if err != nil {
		return err
	}
	e.seq.Seed(last)

	symbols, err := e.repo.ListSymbols(ctx)
	if err != nil {
		return err
	}
	for _, symbol := range symbols {
		orders, err := e.repo.LoadOpenOrders(ctx, symbol)
		if err != nil {
			return err
		}
		for _, o := range orders {
			e.orders[o.ID] = o
			e.exchange.ExecuteOrder(o)
		}
		e.log.Info("restored open orders",
			zap.String("symbol", symbol),
			zap.Int("count", len(orders)))
	}
	return nil
}

// SubmitOrder rests the order, crosses its symbol's book and returns the
// executions produced. Persistence and publishing are best-effort and never
// fail the submit.
func (e *Engine) SubmitOrder(ctx context.Context, o *domain.Order) []domain.Execution {
	e.mu.Lock()
	e.orders[o.ID] = o
	fills := e.exchange.ExecuteOrder(o)
	snapshot := e.snapshotLocked(o.Symbol)
	e.mu.Unlock()

	if e.repo != nil {
		if err := e.repo.SaveOrder(ctx, o); err != nil {
			e.log.Warn("persist order failed", zap.Uint64("order_id", o.ID), zap.Error(err))
		}
		for _, ex := range fills {
			if err := e.repo.SaveExecution(ctx, ex); err != nil {
				e.log.Warn("persist execution failed", zap.Uint64("exec_id", ex.ID), zap.Error(err))
			}
			qty := ex.Quantity()
			for _, side := range []domain.Order{ex.Buy, ex.Sell} {
				if side.Quantity == qty {
					_ = e.repo.MarkFilled(ctx, side.ID)
					continue
				}
				if side.ID == o.ID {
					// the incoming order's reduced quantity was saved above
					continue
				}
				rest := side
				rest.Quantity -= qty
				if err := e.repo.SaveOrder(ctx, &rest); err != nil {
					e.log.Warn("persist partial fill failed", zap.Uint64("order_id", rest.ID), zap.Error(err))
				}
			}
		}
	}
	e.refreshCache(ctx, snapshot)
	for _, ex := range fills {
		e.publish(ctx, ex)
	}

	e.log.Info("order submitted",
		zap.Uint64("order_id", o.ID),
		zap.String("symbol", o.Symbol),
		zap.String("side", string(o.Side)),
		zap.Float64("price", o.Price),
		zap.Int("fills", len(fills)))
	return fills
}

// CancelOrder removes a resting order by id. Unknown, filled or already
// cancelled orders report false with no side effects.
func (e *Engine) CancelOrder(ctx context.Context, orderID uint64) (*domain.Order, bool) {
	e.mu.Lock()
	o, known := e.orders[orderID]
	if !known {
		e.mu.Unlock()
		return nil, false
	}
	removed, ok := e.exchange.CancelOrder(o)
	var snapshot *domain.BookSnapshot
	if ok {
		snapshot = e.snapshotLocked(o.Symbol)
	}
	e.mu.Unlock()
	if !ok {
		return nil, false
	}

	if e.repo != nil {
		if err := e.repo.MarkCancelled(ctx, orderID); err != nil {
			e.log.Warn("persist cancel failed", zap.Uint64("order_id", orderID), zap.Error(err))
		}
	}
	e.refreshCache(ctx, snapshot)
	e.log.Info("order cancelled", zap.Uint64("order_id", orderID), zap.String("symbol", o.Symbol))
	return removed, true
}

// OpenOrders returns copies of the resting orders for a symbol, buys before
// sells, each side best first.
func (e *Engine) OpenOrders(symbol string) []domain.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	resting := e.exchange.OpenOrders(symbol)
	res := make([]domain.Order, len(resting))
	for i, o := range resting {
		res[i] = *o
	}
	return res
}

func (e *Engine) ActiveSymbols() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exchange.ActiveSymbols()
}

func (e *Engine) ExecutionsFor(orderID uint64) []domain.Execution {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exchange.CheckExecution(orderID)
}

func (e *Engine) Executions() []domain.Execution {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exchange.Executions()
}

// Book returns a snapshot for one symbol, served from the cache when
// available.
func (e *Engine) Book(ctx context.Context, symbol string) *domain.BookSnapshot {
	if e.cache != nil {
		if snap, err := e.cache.GetBook(ctx, symbol); err == nil && snap != nil {
			return snap
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(symbol)
}

// Subscribe registers a live execution feed. The returned cancel func must be
// called when the consumer goes away. Slow consumers lose events instead of
// stalling matching.
func (e *Engine) Subscribe() (<-chan domain.Execution, func()) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	id := e.nextSub
	e.nextSub++
	ch := make(chan domain.Execution, 64)
	e.subs[id] = ch
	return ch, func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		if _, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(ch)
		}
	}
}

func (e *Engine) publish(ctx context.Context, ex domain.Execution) {
	if e.pub != nil {
		if err := e.pub.Publish(ctx, ex); err != nil {
			e.log.Warn("publish execution failed", zap.Uint64("exec_id", ex.ID), zap.Error(err))
		}
	}
	e.subMu.Lock()
	for _, ch := range e.subs {
		select {
		case ch <- ex:
		default:
		}
	}
	e.subMu.Unlock()
}

func (e *Engine) refreshCache(ctx context.Context, snapshot *domain.BookSnapshot) {
	if e.cache == nil || snapshot == nil {
		return
	}
	if len(snapshot.Buys) == 0 && len(snapshot.Sells) == 0 {
		if err := e.cache.Invalidate(ctx, snapshot.Symbol); err != nil {
			e.log.Warn("book cache invalidate failed", zap.String("symbol", snapshot.Symbol), zap.Error(err))
		}
		return
	}
	if err := e.cache.SetBook(ctx, snapshot); err != nil {
		e.log.Warn("book cache refresh failed", zap.String("symbol", snapshot.Symbol), zap.Error(err))
	}
}

func (e *Engine) snapshotLocked(symbol string) *domain.BookSnapshot {
	snap := &domain.BookSnapshot{Symbol: symbol, Timestamp: time.Now()}
	for _, o := range e.exchange.OpenOrders(symbol) {
		if o.Side == domain.Buy {
			snap.Buys = append(snap.Buys, *o)
		} else {
			snap.Sells = append(snap.Sells, *o)
		}
	}
	return snap
}
