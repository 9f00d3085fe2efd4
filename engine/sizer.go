package engine

import "github.com/shopspring/decimal"

// Sizer converts a capital-allocation target and a live ask price into a
// whole-share quantity.
type Sizer struct {
	TargetCapital decimal.Decimal
}

// Size returns the share quantity for an intent. With a usable quote the
// quantity is floor(targetCapital/ask) clamped to at least one share. When
// the quote is unavailable sizing degrades to the signal-provided quantity;
// the second return reports that fallback so callers can surface it.
func (s Sizer) Size(intent *TradeIntent, snap MarketSnapshot) (qty int64, fromSignal bool) {
	if !snap.HasQuote {
		return intent.RequestedQty, true
	}
	qty = s.TargetCapital.Div(snap.AskPrice).IntPart()
	if qty < 1 {
		qty = 1
	}
	return qty, false
}
