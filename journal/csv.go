package journal

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redwarrior112/ema-webhook-trader/engine"
)

var csvHeader = []string{"timestamp", "symbol", "side", "qty", "price", "pnl", "outcome", "reason", "order_id"}

// CSVJournal appends one row per trade event to a flat file.
type CSVJournal struct {
	path string
	mu   sync.Mutex
}

// NewCSVJournal creates the journal, writing the header if the file does
// not exist yet.
func NewCSVJournal(path string) (*CSVJournal, error) {
	j := &CSVJournal{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("create csv journal: %w", err)
		}
		defer f.Close()
		w := csv.NewWriter(f)
		if err := w.Write(csvHeader); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, fmt.Errorf("flush header: %w", err)
		}
	}
	return j, nil
}

// Name identifies the journal in dispatcher logs.
func (j *CSVJournal) Name() string { return "csv" }

// Record appends one row.
func (j *CSVJournal) Record(ctx context.Context, ev engine.TradeEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open csv journal: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	row := []string{
		ev.Timestamp.UTC().Format(time.RFC3339),
		ev.Symbol,
		string(ev.Side),
		strconv.FormatInt(ev.Qty, 10),
		ev.Price.StringFixed(2),
		ev.PnL.StringFixed(2),
		ev.Outcome,
		ev.Reason,
		ev.OrderID,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	return w.Error()
}
