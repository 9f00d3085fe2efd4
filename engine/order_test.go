package engine

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAssembleOrder_Market(t *testing.T) {
	intent := &TradeIntent{Symbol: "AAPL", Side: SideBuy}

	plan := AssembleOrder(intent, 26, nil)

	if plan.Type != OrderTypeMarket || plan.TimeInForce != TimeInForceGTC {
		t.Errorf("type/tif = %s/%s, want market/gtc", plan.Type, plan.TimeInForce)
	}
	if plan.OrderClass != OrderClassMarketOnly || plan.Bracket != nil {
		t.Errorf("market order carries bracket fields: class=%q bracket=%v", plan.OrderClass, plan.Bracket)
	}
	if plan.Qty != 26 || plan.Symbol != "AAPL" || plan.Side != SideBuy {
		t.Errorf("plan = %+v", plan)
	}
}

func TestAssembleOrder_Bracket(t *testing.T) {
	intent := &TradeIntent{Symbol: "TSLA", Side: SideBuy}
	bracket := &Bracket{
		TakeProfit: decimal.RequireFromString("110.00"),
		StopLoss:   decimal.RequireFromString("95.00"),
	}

	plan := AssembleOrder(intent, 3, bracket)

	if plan.OrderClass != OrderClassBracket {
		t.Errorf("OrderClass = %q, want %q", plan.OrderClass, OrderClassBracket)
	}
	if plan.Bracket == nil {
		t.Fatal("Bracket not embedded")
	}
	if !plan.Bracket.TakeProfit.Equal(bracket.TakeProfit) || !plan.Bracket.StopLoss.Equal(bracket.StopLoss) {
		t.Errorf("bracket levels = %+v, want %+v", plan.Bracket, bracket)
	}
}

func TestAssembleOrder_Deterministic(t *testing.T) {
	intent := &TradeIntent{Symbol: "MSFT", Side: SideSell}
	bracket := &Bracket{
		TakeProfit: decimal.RequireFromString("430.02"),
		StopLoss:   decimal.RequireFromString("410.55"),
	}

	a, err := json.Marshal(AssembleOrder(intent, 7, bracket))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(AssembleOrder(intent, 7, bracket))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("identical inputs produced different plans:\n%s\n%s", a, b)
	}
}
