package engine

// Order type and time-in-force are fixed: every order this system submits
// is a good-till-cancelled market order, optionally wrapped in a bracket.
const (
	OrderTypeMarket      = "market"
	TimeInForceGTC       = "gtc"
	OrderClassBracket    = "bracket"
	OrderClassMarketOnly = ""
)

// OrderPlan is the validated, ready-to-submit order. Construction is pure:
// identical inputs always produce an identical plan.
type OrderPlan struct {
	Symbol      string   `json:"symbol"`
	Qty         int64    `json:"qty"`
	Side        Side     `json:"side"`
	Type        string   `json:"type"`
	TimeInForce string   `json:"time_in_force"`
	OrderClass  string   `json:"order_class,omitempty"`
	Bracket     *Bracket `json:"bracket,omitempty"`
}

// AssembleOrder builds the broker order from an intent, a sized quantity
// and an optional validated bracket. No state or network access.
func AssembleOrder(intent *TradeIntent, qty int64, bracket *Bracket) OrderPlan {
	plan := OrderPlan{
		Symbol:      intent.Symbol,
		Qty:         qty,
		Side:        intent.Side,
		Type:        OrderTypeMarket,
		TimeInForce: TimeInForceGTC,
	}
	if bracket != nil {
		plan.OrderClass = OrderClassBracket
		plan.Bracket = bracket
	}
	return plan
}
