package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkova/fix-exchange/internal/domain"
)

func TestExecutionListStartsEmpty(t *testing.T) {
	l := NewExecutionList()
	assert.Zero(t, l.Len())
	assert.Empty(t, l.All())
	assert.Empty(t, l.MatchesForOrder(42))
}

func TestRecordAssignsSequentialIDsFromOne(t *testing.T) {
	seq := domain.NewSequence()
	l := NewExecutionList()
	buy := mustOrder(t, seq, "AAPL", 100, 150.0, domain.Buy)
	sell := mustOrder(t, seq, "AAPL", 100, 150.0, domain.Sell)

	first := l.Record(*buy, *sell)
	second := l.Record(*buy, *sell)
	assert.Equal(t, uint64(1), first.ID)
	assert.Equal(t, uint64(2), second.ID)
	assert.Equal(t, 2, l.Len())
}

func TestLookupSymmetry(t *testing.T) {
	seq := domain.NewSequence()
	l := NewExecutionList()
	buy := mustOrder(t, seq, "AAPL", 100, 150.0, domain.Buy)
	sell := mustOrder(t, seq, "AAPL", 100, 150.0, domain.Sell)

	ex := l.Record(*buy, *sell)

	forBuy := l.MatchesForOrder(buy.ID)
	forSell := l.MatchesForOrder(sell.ID)
	require.Len(t, forBuy, 1)
	require.Len(t, forSell, 1)
	assert.Equal(t, ex, forBuy[0])
	assert.Equal(t, ex, forSell[0])
}

func TestMatchesForOrderAccumulatesAcrossPartialFills(t *testing.T) {
	seq := domain.NewSequence()
	l := NewExecutionList()
	big := mustOrder(t, seq, "AAPL", 300, 150.0, domain.Buy)
	s1 := mustOrder(t, seq, "AAPL", 100, 150.0, domain.Sell)
	s2 := mustOrder(t, seq, "AAPL", 100, 150.0, domain.Sell)

	l.Record(*big, *s1)
	l.Record(*big, *s2)

	got := l.MatchesForOrder(big.ID)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].ID)
	assert.Equal(t, uint64(2), got[1].ID)
	assert.Len(t, l.MatchesForOrder(s1.ID), 1)
}

func mustOrder(t *testing.T, seq *domain.Sequence, symbol string, qty uint64, price float64, side domain.Side) *domain.Order {
	t.Helper()
	o, err := domain.NewOrder(seq, symbol, qty, price, side)
	require.NoError(t, err)
	return o
}
