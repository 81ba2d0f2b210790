package fixgate

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/avolkova/fix-exchange/internal/domain"
	"github.com/avolkova/fix-exchange/internal/fix"
)

// executionReport summarizes an order's state after submission: cumulative
// filled quantity, leaves, and a quantity-weighted average price over the
// fills it participated in. Money math runs on decimals so reported AvgPx
// carries no float artifacts.
func (s *session) executionReport(in *fix.Message, orderID uint64, symbol string, side domain.Side, origQty uint64, fills []domain.Execution) *fix.Message {
	var (
		cum      uint64
		notional = decimal.Zero
		lastExec uint64
	)
	for _, ex := range fills {
		if ex.Buy.ID != orderID && ex.Sell.ID != orderID {
			continue
		}
		qty := ex.Quantity()
		cum += qty
		notional = notional.Add(
			decimal.NewFromFloat(ex.Price()).Mul(decimal.NewFromUint64(qty)))
		lastExec = ex.ID
	}

	avgPx := decimal.Zero
	if cum > 0 {
		avgPx = notional.DivRound(decimal.NewFromUint64(cum), 8)
	}

	status := "NEW"
	switch {
	case cum >= origQty:
		status = "FILLED"
	case cum > 0:
		status = "PARTIALLY FILLED"
	}

	out := s.replyTo(in)
	out.Set(fix.TagMsgType, fix.MsgTypeExecutionReport)
	out.Set(fix.TagOrderID, strconv.FormatUint(orderID, 10))
	if lastExec > 0 {
		out.Set(fix.TagExecID, strconv.FormatUint(lastExec, 10))
	}
	out.Set(fix.TagSymbol, symbol)
	out.Set(fix.TagSide, fix.WireSide(side))
	out.Set(fix.TagOrderQty, strconv.FormatUint(origQty, 10))
	out.Set(fix.TagLeavesQty, strconv.FormatUint(origQty-cum, 10))
	out.Set(fix.TagCumQty, strconv.FormatUint(cum, 10))
	out.Set(fix.TagAvgPx, avgPx.String())
	out.Set(fix.TagText, status)
	return out
}
