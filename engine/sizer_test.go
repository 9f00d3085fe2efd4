package engine

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSizer_Size(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		snap           MarketSnapshot
		requestedQty   int64
		wantQty        int64
		wantFromSignal bool
	}{
		{
			name:    "floor of target over ask",
			target:  "1000",
			snap:    MarketSnapshot{AskPrice: decimal.RequireFromString("37.50"), HasQuote: true},
			wantQty: 26,
		},
		{
			name:    "exact division",
			target:  "500",
			snap:    MarketSnapshot{AskPrice: decimal.RequireFromString("125"), HasQuote: true},
			wantQty: 4,
		},
		{
			name:    "expensive symbol clamps to one share",
			target:  "500",
			snap:    MarketSnapshot{AskPrice: decimal.RequireFromString("812.40"), HasQuote: true},
			wantQty: 1,
		},
		{
			name:           "no quote falls back to signal qty",
			target:         "1000",
			snap:           MarketSnapshot{},
			requestedQty:   5,
			wantQty:        5,
			wantFromSignal: true,
		},
		{
			name:           "no quote, default signal qty",
			target:         "1000",
			snap:           MarketSnapshot{},
			requestedQty:   1,
			wantQty:        1,
			wantFromSignal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sizer := Sizer{TargetCapital: decimal.RequireFromString(tt.target)}
			intent := &TradeIntent{Symbol: "AAPL", Side: SideBuy, RequestedQty: tt.requestedQty}

			qty, fromSignal := sizer.Size(intent, tt.snap)
			if qty != tt.wantQty {
				t.Errorf("Size() qty = %d, want %d", qty, tt.wantQty)
			}
			if fromSignal != tt.wantFromSignal {
				t.Errorf("Size() fromSignal = %v, want %v", fromSignal, tt.wantFromSignal)
			}
		})
	}
}
