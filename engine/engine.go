package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
)

// Outcome values recorded on trade events.
const (
	OutcomeSubmitted = "submitted"
	OutcomeSkipped   = "skipped"
	OutcomeRejected  = "rejected"
)

// OrderReceipt is the broker's acknowledgement of a submitted order.
type OrderReceipt struct {
	OrderID string          `json:"order_id"`
	Status  string          `json:"status"`
	Raw     json.RawMessage `json:"raw,omitempty"`
}

// BrokerError is a categorized order rejection from the broker, surfaced
// verbatim to the caller. It is a result value, not control flow: the
// engine never retries.
type BrokerError struct {
	StatusCode int
	Message    string
}

func (e *BrokerError) Error() string {
	return fmt.Sprintf("broker rejected order (status %d): %s", e.StatusCode, e.Message)
}

// OrderSink submits a fully assembled order to the broker.
type OrderSink interface {
	SubmitOrder(ctx context.Context, plan OrderPlan) (*OrderReceipt, error)
}

// TradeEvent is the best-effort record handed to notification sinks after
// a decision completes.
type TradeEvent struct {
	Symbol    string          `json:"symbol"`
	Side      Side            `json:"side"`
	Qty       int64           `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	PnL       decimal.Decimal `json:"pnl"`
	Timestamp time.Time       `json:"timestamp"`
	Outcome   string          `json:"outcome"`
	Reason    string          `json:"reason,omitempty"`
	OrderID   string          `json:"order_id,omitempty"`
}

// EventSink receives trade events asynchronously. Implementations must not
// block the caller and must swallow their own failures.
type EventSink interface {
	Publish(ev TradeEvent)
}

// Status of a completed decision.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusError   Status = "error"
)

// Result is the outcome of one webhook invocation.
type Result struct {
	Status          Status
	Reason          SkipReason    // set when Status is StatusSkipped
	Receipt         *OrderReceipt // set when Status is StatusSuccess
	Qty             int64
	OrderClass      string // "market" or "bracket"
	SizedFromSignal bool   // sizing fell back to the signal-provided quantity
}

// Engine runs the trade-execution decision sequence for each inbound
// signal. All external calls are bounded by CallTimeout.
type Engine struct {
	secret    string
	sizer     Sizer
	entryGate *EntryGate
	quotes    QuoteSource
	positions PositionSource
	orders    OrderSink
	events    EventSink

	callTimeout time.Duration
}

// Options configures an Engine.
type Options struct {
	SharedSecret  string
	TargetCapital decimal.Decimal
	PositionLimit int64
	CallTimeout   time.Duration
}

// New creates an Engine with a fresh entry gate.
func New(opts Options, quotes QuoteSource, positions PositionSource, orders OrderSink, events EventSink) *Engine {
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Engine{
		secret:      opts.SharedSecret,
		sizer:       Sizer{TargetCapital: opts.TargetCapital},
		entryGate:   NewEntryGate(opts.PositionLimit),
		quotes:      quotes,
		positions:   positions,
		orders:      orders,
		events:      events,
		callTimeout: timeout,
	}
}

// Execute runs the full decision sequence for one raw signal: validate,
// snapshot, gate, size, validate bracket, assemble, submit, notify.
//
// A nil error with StatusSkipped is a normal outcome and mutates nothing
// beyond the entry-gate watermark on the accepting path. Errors are fatal
// to the request and are returned before any broker call except for
// *BrokerError, which reports a submission the broker refused.
func (e *Engine) Execute(ctx context.Context, raw RawSignal) (*Result, error) {
	intent, err := ParseSignal(raw, e.secret)
	if err != nil {
		return nil, err
	}

	log.Printf("[INFO] signal %s %dx %s @ %s pnl=%s",
		intent.Side, intent.RequestedQty, intent.Symbol,
		intent.Price.StringFixed(2), intent.PnL.StringFixed(2))

	snapCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	snap := fetchSnapshot(snapCtx, e.quotes, e.positions, intent.Symbol)
	cancel()

	var reason SkipReason
	var ok bool
	switch intent.Side {
	case SideBuy:
		reason, ok = e.entryGate.Check(snap.Position)
	case SideSell:
		reason, ok = CheckExit(snap.Position)
	}
	if !ok {
		log.Printf("[INFO] skipped %s %s: %s", intent.Side, intent.Symbol, reason)
		e.publish(intent, 0, OutcomeSkipped, string(reason), "")
		return &Result{Status: StatusSkipped, Reason: reason}, nil
	}

	qty, fromSignal := e.sizer.Size(intent, snap)
	if fromSignal {
		log.Printf("[WARN] no quote for %s, sizing from signal qty %d", intent.Symbol, qty)
	}

	var bracket *Bracket
	if intent.UseBracket && intent.TakeProfit != nil && intent.StopLoss != nil {
		bracket, err = ValidateBracket(*intent.TakeProfit, *intent.StopLoss, snap)
		if err != nil {
			return nil, err
		}
	}

	plan := AssembleOrder(intent, qty, bracket)

	orderCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	receipt, err := e.orders.SubmitOrder(orderCtx, plan)
	cancel()
	if err != nil {
		e.publish(intent, qty, OutcomeRejected, err.Error(), "")
		return nil, err
	}

	log.Printf("[INFO] order submitted: %s %dx %s (order %s, %s)",
		plan.Side, plan.Qty, plan.Symbol, receipt.OrderID, receipt.Status)
	e.publish(intent, qty, OutcomeSubmitted, "", receipt.OrderID)

	class := "market"
	if bracket != nil {
		class = OrderClassBracket
	}
	return &Result{
		Status:          StatusSuccess,
		Receipt:         receipt,
		Qty:             qty,
		OrderClass:      class,
		SizedFromSignal: fromSignal,
	}, nil
}

func (e *Engine) publish(intent *TradeIntent, qty int64, outcome, reason, orderID string) {
	if e.events == nil {
		return
	}
	e.events.Publish(TradeEvent{
		Symbol:    intent.Symbol,
		Side:      intent.Side,
		Qty:       qty,
		Price:     intent.Price,
		PnL:       intent.PnL,
		Timestamp: intent.ReceivedAt,
		Outcome:   outcome,
		Reason:    reason,
		OrderID:   orderID,
	})
}
