package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// bracketBuffer is the minimum distance both bracket legs must keep from
// the current ask so the broker does not reject levels sitting on top of
// the market.
var bracketBuffer = decimal.RequireFromString("0.01")

var (
	// ErrQuoteUnavailable means a bracket was requested but no reference
	// price exists to validate it against.
	ErrQuoteUnavailable = errors.New("quote unavailable")
	// ErrInvalidTakeProfit means the take-profit level is not above the
	// ask plus the buffer.
	ErrInvalidTakeProfit = errors.New("invalid take profit")
	// ErrInvalidStopLoss means the stop-loss level is not below the ask
	// minus the buffer.
	ErrInvalidStopLoss = errors.New("invalid stop loss")
)

// BracketError reports a bracket leg that failed validation, carrying the
// offending level and the base price it was checked against.
type BracketError struct {
	reason error
	Level  decimal.Decimal
	Base   decimal.Decimal
}

func (e *BracketError) Error() string {
	return fmt.Sprintf("%v: level %s vs ask %s (buffer %s)",
		e.reason, e.Level.StringFixed(2), e.Base.StringFixed(2), bracketBuffer.String())
}

func (e *BracketError) Unwrap() error { return e.reason }

// Bracket holds validated take-profit and stop-loss levels.
type Bracket struct {
	TakeProfit decimal.Decimal `json:"take_profit"`
	StopLoss   decimal.Decimal `json:"stop_loss"`
}

// ValidateBracket checks both legs against the snapshot ask price. A
// bracket is never validated without a live quote.
func ValidateBracket(takeProfit, stopLoss decimal.Decimal, snap MarketSnapshot) (*Bracket, error) {
	if !snap.HasQuote {
		return nil, ErrQuoteUnavailable
	}
	if !takeProfit.GreaterThan(snap.AskPrice.Add(bracketBuffer)) {
		return nil, &BracketError{reason: ErrInvalidTakeProfit, Level: takeProfit, Base: snap.AskPrice}
	}
	if !stopLoss.LessThan(snap.AskPrice.Sub(bracketBuffer)) {
		return nil, &BracketError{reason: ErrInvalidStopLoss, Level: stopLoss, Base: snap.AskPrice}
	}
	return &Bracket{TakeProfit: takeProfit, StopLoss: stopLoss}, nil
}
