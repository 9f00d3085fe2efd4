package engine

import (
	"context"
	"log"
	"sync"

	"github.com/shopspring/decimal"
)

// QuoteSource returns the latest ask price for a symbol.
type QuoteSource interface {
	LatestAsk(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// PositionSource returns the currently held signed quantity for a symbol.
// A flat symbol reports 0 with a nil error.
type PositionSource interface {
	OpenQty(ctx context.Context, symbol string) (int64, error)
}

// MarketSnapshot is the per-request view of the market. It is fetched fresh
// for every webhook invocation and never cached across requests.
type MarketSnapshot struct {
	AskPrice decimal.Decimal
	HasQuote bool
	Position int64
}

// fetchSnapshot gathers the quote and the open position concurrently.
// Either source failing degrades the snapshot instead of aborting: a missing
// quote flips HasQuote off (sizing falls back, brackets become invalid) and
// a missing position reads as flat.
func fetchSnapshot(ctx context.Context, quotes QuoteSource, positions PositionSource, symbol string) MarketSnapshot {
	var snap MarketSnapshot
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		ask, err := quotes.LatestAsk(ctx, symbol)
		if err != nil {
			log.Printf("[WARN] quote lookup failed for %s: %v", symbol, err)
			return
		}
		snap.AskPrice = ask
		snap.HasQuote = ask.IsPositive()
	}()
	go func() {
		defer wg.Done()
		qty, err := positions.OpenQty(ctx, symbol)
		if err != nil {
			log.Printf("[WARN] position lookup failed for %s, assuming flat: %v", symbol, err)
			return
		}
		snap.Position = qty
	}()
	wg.Wait()

	return snap
}
