package core

import (
	"sort"

	"github.com/avolkova/fix-exchange/internal/domain"
)

// OrderBook keeps per-symbol resting orders, one sorted list per side, plus
// the execution ledger. Lists are kept in priority order (head = best), so
// matching only ever looks at index 0.
type OrderBook struct {
	buys       map[string][]*domain.Order
	sells      map[string][]*domain.Order
	Executions *ExecutionList
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		buys:       make(map[string][]*domain.Order),
		sells:      make(map[string][]*domain.Order),
		Executions: NewExecutionList(),
	}
}

func (b *OrderBook) side(s domain.Side) map[string][]*domain.Order {
	if s == domain.Buy {
		return b.buys
	}
	return b.sells
}

// AddOrder inserts the order at its priority position, creating the symbol's
// list if absent. Fully consumed orders never rest.
func (b *OrderBook) AddOrder(o *domain.Order) {
	if o.Quantity == 0 {
		return
	}
	side := b.side(o.Side)
	list := side[o.Symbol]
	at := sort.Search(len(list), func(i int) bool { return o.Before(list[i]) })
	list = append(list, nil)
	copy(list[at+1:], list[at:])
	list[at] = o
	side[o.Symbol] = list
}

// RemoveOrder removes the order with the same identity from its side of the
// book, pruning the symbol entry if the side empties. It returns the resting
// order with whatever quantity it still held, or false if it is not resting.
func (b *OrderBook) RemoveOrder(o *domain.Order) (*domain.Order, bool) {
	side := b.side(o.Side)
	list, ok := side[o.Symbol]
	if !ok {
		return nil, false
	}
	for i, resting := range list {
		if resting.Equal(o) {
			side[o.Symbol] = append(list[:i], list[i+1:]...)
			if len(side[o.Symbol]) == 0 {
				delete(side, o.Symbol)
			}
			return resting, true
		}
	}
	return nil, false
}

// MatchOrders crosses the book for one symbol and returns the executions it
// produced. While the best buy and best sell are compatible
// (buy.Price >= sell.Price), min(buy.Quantity, sell.Quantity) is transacted:
// the pair is recorded as it stood before adjustment, the larger side is
// reduced and reinserted under the same id, and the filled side is discarded.
// Equal quantities consume both. The loop leaves no crossed book behind and
// costs one failed head comparison when there is nothing to match.
func (b *OrderBook) MatchOrders(symbol string) []domain.Execution {
	var fills []domain.Execution
	for {
		buyList, sellList := b.buys[symbol], b.sells[symbol]
		if len(buyList) == 0 || len(sellList) == 0 {
			break
		}
		buy, sell := buyList[0], sellList[0]
		if buy.Price < sell.Price {
			break
		}

		fills = append(fills, b.Executions.Record(*buy, *sell))

		b.buys[symbol] = buyList[1:]
		b.sells[symbol] = sellList[1:]
		switch {
		case buy.Quantity > sell.Quantity:
			buy.Quantity -= sell.Quantity
			b.AddOrder(buy)
		case buy.Quantity < sell.Quantity:
			sell.Quantity -= buy.Quantity
			b.AddOrder(sell)
		}
	}
	b.prune(symbol)
	return fills
}

func (b *OrderBook) prune(symbol string) {
	if list, ok := b.buys[symbol]; ok && len(list) == 0 {
		delete(b.buys, symbol)
	}
	if list, ok := b.sells[symbol]; ok && len(list) == 0 {
		delete(b.sells, symbol)
	}
}

// OpenOrders returns the resting orders for a symbol, buys then sells, each
// side in priority order.
func (b *OrderBook) OpenOrders(symbol string) []*domain.Order {
	var res []*domain.Order
	res = append(res, b.buys[symbol]...)
	res = append(res, b.sells[symbol]...)
	return res
}

// ActiveSymbols returns every symbol with resting interest on either side.
func (b *OrderBook) ActiveSymbols() []string {
	seen := make(map[string]struct{}, len(b.buys)+len(b.sells))
	for s := range b.buys {
		seen[s] = struct{}{}
	}
	for s := range b.sells {
		seen[s] = struct{}{}
	}
	res := make([]string, 0, len(seen))
	for s := range seen {
		res = append(res, s)
	}
	sort.Strings(res)
	return res
}
