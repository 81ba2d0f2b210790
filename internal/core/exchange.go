package core

import "github.com/avolkova/fix-exchange/internal/domain"

// Exchange is the engine's public face: one order book plus its ledger.
// It is not safe for concurrent use; callers serialize access (see
// internal/engine).
type Exchange struct {
	book *OrderBook
}

func NewExchange() *Exchange {
	return &Exchange{book: NewOrderBook()}
}

// ExecuteOrder rests the order and immediately crosses the book for its
// symbol. The add-then-match pair must not interleave with other calls for
// the same symbol.
func (e *Exchange) ExecuteOrder(o *domain.Order) []domain.Execution {
	e.book.AddOrder(o)
	return e.book.MatchOrders(o.Symbol)
}

// CancelOrder removes the order by identity. Cancelling an order that is not
// resting (filled, already cancelled, or unknown) is a no-op and reports
// false. Recorded executions are untouched.
func (e *Exchange) CancelOrder(o *domain.Order) (*domain.Order, bool) {
	return e.book.RemoveOrder(o)
}

// CheckExecution returns every execution the order id participated in.
func (e *Exchange) CheckExecution(orderID uint64) []domain.Execution {
	return e.book.Executions.MatchesForOrder(orderID)
}

// Executions returns the full ledger across all symbols.
func (e *Exchange) Executions() []domain.Execution {
	return e.book.Executions.All()
}

func (e *Exchange) OpenOrders(symbol string) []*domain.Order {
	return e.book.OpenOrders(symbol)
}

func (e *Exchange) ActiveSymbols() []string {
	return e.book.ActiveSymbols()
}
