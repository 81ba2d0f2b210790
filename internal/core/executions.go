package core

import (
	"sort"

	"github.com/avolkova/fix-exchange/internal/domain"
)

// ExecutionList is the append-only trade ledger. Execution ids are assigned
// sequentially from 1 and never reused; records are never mutated or deleted,
// so cancellation leaves history intact.
type ExecutionList struct {
	matches map[uint64]domain.Execution
	lookup  map[uint64]map[uint64]struct{} // order id -> execution ids
}

func NewExecutionList() *ExecutionList {
	return &ExecutionList{
		matches: make(map[uint64]domain.Execution),
		lookup:  make(map[uint64]map[uint64]struct{}),
	}
}

// Record assigns the next execution id and stores the pair as it stood at
// match time. Both participating order ids become queryable.
func (l *ExecutionList) Record(buy, sell domain.Order) domain.Execution {
	ex := domain.Execution{
		ID:   uint64(len(l.matches)) + 1,
		Buy:  buy,
		Sell: sell,
	}
	l.insert(ex)
	return ex
}

func (l *ExecutionList) insert(ex domain.Execution) {
	for _, id := range []uint64{ex.Buy.ID, ex.Sell.ID} {
		set, ok := l.lookup[id]
		if !ok {
			set = make(map[uint64]struct{})
			l.lookup[id] = set
		}
		set[ex.ID] = struct{}{}
	}
	l.matches[ex.ID] = ex
}

// MatchesForOrder returns every execution the order participated in, oldest
// first. Unknown ids yield an empty slice, never an error.
func (l *ExecutionList) MatchesForOrder(orderID uint64) []domain.Execution {
	ids, ok := l.lookup[orderID]
	if !ok {
		return nil
	}
	res := make([]domain.Execution, 0, len(ids))
	for id := range ids {
		res = append(res, l.matches[id])
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// All returns every execution recorded so far, oldest first.
func (l *ExecutionList) All() []domain.Execution {
	res := make([]domain.Execution, 0, len(l.matches))
	for _, ex := range l.matches {
		res = append(res, ex)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (l *ExecutionList) Len() int {
	return len(l.matches)
}
