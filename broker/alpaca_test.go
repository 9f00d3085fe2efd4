package broker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/redwarrior112/ema-webhook-trader/engine"
)

func TestBuildOrderRequest_Market(t *testing.T) {
	plan := engine.OrderPlan{
		Symbol:      "AAPL",
		Qty:         26,
		Side:        engine.SideBuy,
		Type:        engine.OrderTypeMarket,
		TimeInForce: engine.TimeInForceGTC,
	}

	req := buildOrderRequest(plan)

	if req.Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want AAPL", req.Symbol)
	}
	if req.Qty == nil || !req.Qty.Equal(decimal.NewFromInt(26)) {
		t.Errorf("Qty = %v, want 26", req.Qty)
	}
	if string(req.Side) != "buy" || string(req.Type) != "market" || string(req.TimeInForce) != "gtc" {
		t.Errorf("side/type/tif = %s/%s/%s", req.Side, req.Type, req.TimeInForce)
	}
	if req.OrderClass != "" || req.TakeProfit != nil || req.StopLoss != nil {
		t.Error("market order carries bracket fields")
	}
	if req.ClientOrderID == "" {
		t.Error("ClientOrderID not set")
	}
}

func TestBuildOrderRequest_Bracket(t *testing.T) {
	plan := engine.OrderPlan{
		Symbol:      "TSLA",
		Qty:         3,
		Side:        engine.SideBuy,
		Type:        engine.OrderTypeMarket,
		TimeInForce: engine.TimeInForceGTC,
		OrderClass:  engine.OrderClassBracket,
		Bracket: &engine.Bracket{
			TakeProfit: decimal.RequireFromString("110.00"),
			StopLoss:   decimal.RequireFromString("95.00"),
		},
	}

	req := buildOrderRequest(plan)

	if string(req.OrderClass) != "bracket" {
		t.Errorf("OrderClass = %q, want bracket", req.OrderClass)
	}
	if req.TakeProfit == nil || req.TakeProfit.LimitPrice == nil ||
		!req.TakeProfit.LimitPrice.Equal(decimal.RequireFromString("110.00")) {
		t.Errorf("TakeProfit = %+v, want limit 110.00", req.TakeProfit)
	}
	if req.StopLoss == nil || req.StopLoss.StopPrice == nil ||
		!req.StopLoss.StopPrice.Equal(decimal.RequireFromString("95.00")) {
		t.Errorf("StopLoss = %+v, want stop 95.00", req.StopLoss)
	}
}

func TestBuildOrderRequest_FreshClientOrderID(t *testing.T) {
	plan := engine.OrderPlan{Symbol: "AAPL", Qty: 1, Side: engine.SideBuy,
		Type: engine.OrderTypeMarket, TimeInForce: engine.TimeInForceGTC}

	a := buildOrderRequest(plan)
	b := buildOrderRequest(plan)
	if a.ClientOrderID == b.ClientOrderID {
		t.Error("two submissions share a client order ID")
	}
}

func TestCallWithTimeout_Expiry(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := callWithTimeout(ctx, func() (int, error) {
		time.Sleep(time.Second)
		return 42, nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
}

func TestCallWithTimeout_Value(t *testing.T) {
	got, err := callWithTimeout(context.Background(), func() (string, error) {
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("got %q, %v", got, err)
	}
}
