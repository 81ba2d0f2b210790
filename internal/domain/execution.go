package domain

// Execution is an immutable record of one matched trade: both orders as they
// stood at match time, before any quantity adjustment.
type Execution struct {
	ID   uint64
	Buy  Order
	Sell Order
}

// Quantity returns the transacted quantity of the execution.
func (e Execution) Quantity() uint64 {
	if e.Buy.Quantity < e.Sell.Quantity {
		return e.Buy.Quantity
	}
	return e.Sell.Quantity
}

// Price returns the price the trade printed at. The engine records raw order
// pairs; by convention fills report at the sell-side limit.
func (e Execution) Price() float64 {
	return e.Sell.Price
}
