package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func snapAt(ask string) MarketSnapshot {
	return MarketSnapshot{AskPrice: decimal.RequireFromString(ask), HasQuote: true}
}

func TestValidateBracket(t *testing.T) {
	tests := []struct {
		name       string
		takeProfit string
		stopLoss   string
		snap       MarketSnapshot
		wantErr    error
	}{
		{
			name:       "both legs clear the buffer",
			takeProfit: "102.00", stopLoss: "98.00",
			snap: snapAt("100.00"),
		},
		{
			name:       "take profit at market",
			takeProfit: "100.00", stopLoss: "98.00",
			snap:    snapAt("100.00"),
			wantErr: ErrInvalidTakeProfit,
		},
		{
			name:       "take profit exactly at buffer is rejected",
			takeProfit: "100.01", stopLoss: "98.00",
			snap:    snapAt("100.00"),
			wantErr: ErrInvalidTakeProfit,
		},
		{
			name:       "take profit one cent past buffer is accepted",
			takeProfit: "100.02", stopLoss: "98.00",
			snap: snapAt("100.00"),
		},
		{
			name:       "stop loss exactly at buffer is rejected",
			takeProfit: "102.00", stopLoss: "99.99",
			snap:    snapAt("100.00"),
			wantErr: ErrInvalidStopLoss,
		},
		{
			name:       "stop loss one cent past buffer is accepted",
			takeProfit: "102.00", stopLoss: "99.98",
			snap: snapAt("100.00"),
		},
		{
			name:       "no quote is a hard failure",
			takeProfit: "102.00", stopLoss: "98.00",
			snap:    MarketSnapshot{},
			wantErr: ErrQuoteUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bracket, err := ValidateBracket(
				decimal.RequireFromString(tt.takeProfit),
				decimal.RequireFromString(tt.stopLoss),
				tt.snap,
			)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ValidateBracket() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateBracket() unexpected error: %v", err)
			}
			if bracket.TakeProfit.String() != decimal.RequireFromString(tt.takeProfit).String() {
				t.Errorf("TakeProfit = %s, want %s", bracket.TakeProfit, tt.takeProfit)
			}
		})
	}
}

func TestBracketError_ReportsBasePrice(t *testing.T) {
	_, err := ValidateBracket(
		decimal.RequireFromString("100.00"),
		decimal.RequireFromString("98.00"),
		snapAt("100.00"),
	)

	var bErr *BracketError
	if !errors.As(err, &bErr) {
		t.Fatalf("error %v is not a *BracketError", err)
	}
	if bErr.Base.StringFixed(2) != "100.00" {
		t.Errorf("Base = %s, want 100.00", bErr.Base)
	}
	if !strings.Contains(err.Error(), "100.00") {
		t.Errorf("error message %q does not report the base price", err.Error())
	}
}
