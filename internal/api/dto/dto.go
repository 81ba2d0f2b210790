package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/avolkova/fix-exchange/internal/domain"
)

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

type SubmitOrderRequest struct {
	Symbol   string          `json:"symbol" binding:"required"`
	Side     Side            `json:"side" binding:"required"`
	Quantity uint64          `json:"quantity" binding:"required"`
	Price    decimal.Decimal `json:"price" binding:"required"`
}

// Validate rejects requests the engine would choke on before an id is minted.
func (r *SubmitOrderRequest) Validate() error {
	switch r.Side {
	case Buy, Sell:
	default:
		return fmt.Errorf("invalid side: %s", r.Side)
	}
	if r.Quantity == 0 {
		return fmt.Errorf("quantity must be > 0")
	}
	if r.Price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("price must be > 0")
	}
	return nil
}

type SubmitOrderResponse struct {
	OrderID    uint64      `json:"order_id"`
	Executions []Execution `json:"executions"`
	Remaining  uint64      `json:"remaining"`
}

type CancelOrderRequest struct {
	OrderID uint64 `json:"order_id" binding:"required"`
}

type CancelOrderResponse struct {
	OrderID   uint64 `json:"order_id"`
	Cancelled bool   `json:"cancelled"`
}

type OpenOrdersResponse struct {
	Symbol string  `json:"symbol"`
	Orders []Order `json:"orders"`
}

type SymbolsResponse struct {
	Symbols []string `json:"symbols"`
}

type ExecutionsResponse struct {
	Executions []Execution `json:"executions"`
}

type Order struct {
	ID       uint64          `json:"id"`
	Symbol   string          `json:"symbol"`
	Side     Side            `json:"side"`
	Quantity uint64          `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type Execution struct {
	ExecID   uint64          `json:"exec_id"`
	Symbol   string          `json:"symbol"`
	Buy      Order           `json:"buy"`
	Sell     Order           `json:"sell"`
	Quantity uint64          `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

func FromOrder(o domain.Order) Order {
	return Order{
		ID:       o.ID,
		Symbol:   o.Symbol,
		Side:     Side(o.Side),
		Quantity: o.Quantity,
		Price:    decimal.NewFromFloat(o.Price),
	}
}

func FromExecution(ex domain.Execution) Execution {
	return Execution{
		ExecID:   ex.ID,
		Symbol:   ex.Buy.Symbol,
		Buy:      FromOrder(ex.Buy),
		Sell:     FromOrder(ex.Sell),
		Quantity: ex.Quantity(),
		Price:    decimal.NewFromFloat(ex.Price()),
	}
}

func FromExecutions(exs []domain.Execution) []Execution {
	res := make([]Execution, len(exs))
	for i, ex := range exs {
		res[i] = FromExecution(ex)
	}
	return res
}
