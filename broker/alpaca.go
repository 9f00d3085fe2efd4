// Package broker adapts the Alpaca trading and market-data APIs to the
// collaborator interfaces the decision engine consumes.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/redwarrior112/ema-webhook-trader/engine"
)

// Alpaca bundles the trading and market-data clients behind the engine's
// QuoteSource, PositionSource and OrderSink interfaces. The SDK calls do
// not take a context, so each one runs under callWithTimeout to bound
// request latency.
type Alpaca struct {
	trading *alpaca.Client
	data    *marketdata.Client
}

// New wraps already-constructed Alpaca clients.
func New(trading *alpaca.Client, data *marketdata.Client) *Alpaca {
	return &Alpaca{trading: trading, data: data}
}

// LatestAsk returns the most recent ask price for the symbol.
func (a *Alpaca) LatestAsk(ctx context.Context, symbol string) (decimal.Decimal, error) {
	quote, err := callWithTimeout(ctx, func() (*marketdata.Quote, error) {
		return a.data.GetLatestQuote(symbol, marketdata.GetLatestQuoteRequest{})
	})
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("latest quote for %s: %w", symbol, err)
	}
	return decimal.NewFromFloat(quote.AskPrice), nil
}

// OpenQty returns the signed quantity currently held in the symbol. A 404
// from the positions endpoint means flat and is not an error.
func (a *Alpaca) OpenQty(ctx context.Context, symbol string) (int64, error) {
	position, err := callWithTimeout(ctx, func() (*alpaca.Position, error) {
		return a.trading.GetPosition(symbol)
	})
	if err != nil {
		var apiErr *alpaca.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("position for %s: %w", symbol, err)
	}
	return position.Qty.IntPart(), nil
}

// SubmitOrder places the assembled plan as an Alpaca order. Rejections are
// returned as *engine.BrokerError with the broker's message intact; the
// order is never retried here.
func (a *Alpaca) SubmitOrder(ctx context.Context, plan engine.OrderPlan) (*engine.OrderReceipt, error) {
	req := buildOrderRequest(plan)

	order, err := callWithTimeout(ctx, func() (*alpaca.Order, error) {
		return a.trading.PlaceOrder(req)
	})
	if err != nil {
		var apiErr *alpaca.APIError
		if errors.As(err, &apiErr) {
			return nil, &engine.BrokerError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
		}
		return nil, fmt.Errorf("place order for %s: %w", plan.Symbol, err)
	}

	raw, _ := json.Marshal(order)
	return &engine.OrderReceipt{
		OrderID: order.ID,
		Status:  string(order.Status),
		Raw:     raw,
	}, nil
}

// buildOrderRequest maps an OrderPlan onto the Alpaca wire request. The
// client order ID makes a resubmission of the same plan dedupe-safe on the
// broker side.
func buildOrderRequest(plan engine.OrderPlan) alpaca.PlaceOrderRequest {
	qty := decimal.NewFromInt(plan.Qty)
	req := alpaca.PlaceOrderRequest{
		Symbol:        plan.Symbol,
		Qty:           &qty,
		Side:          alpaca.Side(plan.Side),
		Type:          alpaca.OrderType(plan.Type),
		TimeInForce:   alpaca.TimeInForce(plan.TimeInForce),
		ClientOrderID: uuid.New().String(),
	}
	if plan.Bracket != nil {
		tp := plan.Bracket.TakeProfit
		sl := plan.Bracket.StopLoss
		req.OrderClass = alpaca.Bracket
		req.TakeProfit = &alpaca.TakeProfit{LimitPrice: &tp}
		req.StopLoss = &alpaca.StopLoss{StopPrice: &sl}
	}
	return req
}

// callWithTimeout runs fn on its own goroutine and abandons it when the
// context expires, so a slow broker call cannot stall a webhook request.
func callWithTimeout[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type outcome struct {
		value T
		err   error
	}
	ch := make(chan outcome, 1)
	go func() {
		v, err := fn()
		ch <- outcome{value: v, err: err}
	}()

	select {
	case out := <-ch:
		return out.value, out.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("broker call: %w", ctx.Err())
	}
}
