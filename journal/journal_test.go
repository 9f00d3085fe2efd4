package journal

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/redwarrior112/ema-webhook-trader/engine"
)

func event(symbol string, side engine.Side, outcome string, pnl string, at time.Time) engine.TradeEvent {
	return engine.TradeEvent{
		Symbol:    symbol,
		Side:      side,
		Qty:       5,
		Price:     decimal.RequireFromString("100.00"),
		PnL:       decimal.RequireFromString(pnl),
		Timestamp: at,
		Outcome:   outcome,
		OrderID:   "ord-1",
	}
}

func TestSQLiteJournal_RecordAndSummarize(t *testing.T) {
	j, err := NewSQLiteJournal(filepath.Join(t.TempDir(), "trades.db"))
	if err != nil {
		t.Fatalf("NewSQLiteJournal: %v", err)
	}
	defer j.Close()

	ctx := context.Background()
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)

	events := []engine.TradeEvent{
		event("AAPL", engine.SideBuy, engine.OutcomeSubmitted, "0", now),
		event("AAPL", engine.SideSell, engine.OutcomeSubmitted, "12.50", now.Add(time.Minute)),
		event("TSLA", engine.SideBuy, engine.OutcomeSkipped, "0", now.Add(2*time.Minute)),
		event("MSFT", engine.SideBuy, engine.OutcomeRejected, "0", now.Add(3*time.Minute)),
		// Before the summary window, must not be counted.
		event("AAPL", engine.SideBuy, engine.OutcomeSubmitted, "99", now.Add(-24*time.Hour)),
	}
	for _, ev := range events {
		if err := j.Record(ctx, ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	s, err := j.Summarize(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Submitted != 2 || s.Skipped != 1 || s.Rejected != 1 {
		t.Errorf("counts = %+v, want 2 submitted / 1 skipped / 1 rejected", s)
	}
	if s.Buys != 1 || s.Sells != 1 {
		t.Errorf("buys/sells = %d/%d, want 1/1", s.Buys, s.Sells)
	}
	if s.TotalPnL != 12.50 {
		t.Errorf("TotalPnL = %v, want 12.50", s.TotalPnL)
	}
}

func TestCSVJournal_HeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	j, err := NewCSVJournal(path)
	if err != nil {
		t.Fatalf("NewCSVJournal: %v", err)
	}

	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	if err := j.Record(context.Background(), event("AAPL", engine.SideBuy, engine.OutcomeSubmitted, "1.25", now)); err != nil {
		t.Fatalf("Record: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("csv has %d rows, want header + 1", len(rows))
	}
	if rows[0][0] != "timestamp" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "AAPL" || rows[1][2] != "buy" || rows[1][3] != "5" || rows[1][5] != "1.25" {
		t.Errorf("row = %v", rows[1])
	}
}

func TestCSVJournal_ReopenDoesNotDuplicateHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	if _, err := NewCSVJournal(path); err != nil {
		t.Fatal(err)
	}
	j, err := NewCSVJournal(path)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now().UTC()
	if err := j.Record(context.Background(), event("AAPL", engine.SideBuy, engine.OutcomeSubmitted, "0", now)); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("csv has %d rows, want 2", len(rows))
	}
}
