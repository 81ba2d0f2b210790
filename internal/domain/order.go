package domain

import (
	"fmt"
	"math"
	"sync/atomic"
)

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// ErrInvalidPrice is returned when an order is constructed with a price the
// book cannot compare (NaN or infinite).
var ErrInvalidPrice = fmt.Errorf("order price must be a finite number")

// Sequence hands out order ids. Ids are dense, monotonic and never reused;
// they double as the time component of price-time priority.
type Sequence struct {
	n atomic.Uint64
}

func NewSequence() *Sequence {
	return &Sequence{}
}

func (s *Sequence) Next() uint64 {
	return s.n.Add(1)
}

// Seed fast-forwards the sequence past ids already issued in a previous run.
func (s *Sequence) Seed(last uint64) {
	for {
		cur := s.n.Load()
		if cur >= last || s.n.CompareAndSwap(cur, last) {
			return
		}
	}
}

// Order is an identity plus a mutable remaining quantity. Two orders are the
// same order iff their ids match, regardless of quantity mutations.
type Order struct {
	ID       uint64
	Symbol   string
	Quantity uint64
	Price    float64
	Side     Side
}

// NewOrder allocates the next id from seq. Prices are validated here so the
// book never has to compare a NaN.
func NewOrder(seq *Sequence, symbol string, quantity uint64, price float64, side Side) (*Order, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, ErrInvalidPrice
	}
	return &Order{
		ID:       seq.Next(),
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price,
		Side:     side,
	}, nil
}

// Before reports whether o rests ahead of other on the same side of the book.
// Buys: higher price first; sells: lower price first; equal prices resolve to
// the earlier id. No two distinct orders compare equal, so the ordering is a
// strict total order.
func (o *Order) Before(other *Order) bool {
	if o.Price != other.Price {
		if o.Side == Buy {
			return o.Price > other.Price
		}
		return o.Price < other.Price
	}
	return o.ID < other.ID
}

func (o *Order) Equal(other *Order) bool {
	return o.ID == other.ID
}
