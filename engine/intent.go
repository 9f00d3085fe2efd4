package engine

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

var (
	// ErrUnauthorized is returned when the shared secret does not match.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidPayload is returned for a malformed or incomplete signal.
	ErrInvalidPayload = errors.New("invalid payload")
)

// RawSignal is the wire shape of an inbound webhook alert.
type RawSignal struct {
	Secret     string   `json:"secret"`
	Ticker     string   `json:"ticker"`
	Action     string   `json:"action"`
	Qty        int64    `json:"qty,omitempty"`
	UseOCO     bool     `json:"use_oco,omitempty"`
	TakeProfit *float64 `json:"take_profit,omitempty"`
	StopLoss   *float64 `json:"stop_loss,omitempty"`
	Price      float64  `json:"price,omitempty"`
	PnL        float64  `json:"pnl,omitempty"`
}

// TradeIntent is the parsed, trusted representation of one signal.
type TradeIntent struct {
	Symbol       string
	Side         Side
	RequestedQty int64 // fallback sizing only, defaults to 1
	UseBracket   bool
	TakeProfit   *decimal.Decimal
	StopLoss     *decimal.Decimal
	Price        decimal.Decimal // signal-reported reference price, may be zero
	PnL          decimal.Decimal // informational
	ReceivedAt   time.Time
}

// ParseSignal authenticates and normalizes a raw signal into a TradeIntent.
// The secret comparison happens before any other field is inspected so an
// unauthenticated caller learns nothing about payload handling.
func ParseSignal(raw RawSignal, sharedSecret string) (*TradeIntent, error) {
	if subtle.ConstantTimeCompare([]byte(raw.Secret), []byte(sharedSecret)) != 1 {
		return nil, ErrUnauthorized
	}

	if raw.Ticker == "" {
		return nil, fmt.Errorf("%w: missing ticker", ErrInvalidPayload)
	}

	var side Side
	switch strings.ToLower(raw.Action) {
	case string(SideBuy):
		side = SideBuy
	case string(SideSell):
		side = SideSell
	default:
		return nil, fmt.Errorf("%w: unrecognized action %q", ErrInvalidPayload, raw.Action)
	}

	qty := raw.Qty
	if qty <= 0 {
		qty = 1
	}

	intent := &TradeIntent{
		Symbol:       raw.Ticker,
		Side:         side,
		RequestedQty: qty,
		UseBracket:   raw.UseOCO,
		Price:        decimal.NewFromFloat(raw.Price),
		PnL:          decimal.NewFromFloat(raw.PnL),
		ReceivedAt:   time.Now().UTC(),
	}
	if raw.TakeProfit != nil && *raw.TakeProfit > 0 {
		tp := decimal.NewFromFloat(*raw.TakeProfit)
		intent.TakeProfit = &tp
	}
	if raw.StopLoss != nil && *raw.StopLoss > 0 {
		sl := decimal.NewFromFloat(*raw.StopLoss)
		intent.StopLoss = &sl
	}
	return intent, nil
}
