// Package journal persists trade outcomes: a SQLite database for queries
// and summaries, and an append-only CSV for flat-file export. Both satisfy
// the notification.Sink shape and receive events best-effort.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/redwarrior112/ema-webhook-trader/engine"
)

// SQLiteJournal records trades to a SQLite database.
type SQLiteJournal struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteJournal opens (or creates) the database and runs migrations.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so summary reads do not block webhook-path writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	j := &SQLiteJournal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite journal opened: %s", dbPath)
	return j, nil
}

func (j *SQLiteJournal) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			side      TEXT NOT NULL,
			qty       INTEGER,
			price     REAL,
			pnl       REAL,
			outcome   TEXT NOT NULL,
			reason    TEXT,
			order_id  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol)`,
	}

	for _, s := range stmts {
		if _, err := j.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:30], err)
		}
	}
	return nil
}

// Name identifies the journal in dispatcher logs.
func (j *SQLiteJournal) Name() string { return "sqlite" }

// Record inserts one trade event.
func (j *SQLiteJournal) Record(ctx context.Context, ev engine.TradeEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	price, _ := ev.Price.Float64()
	pnl, _ := ev.PnL.Float64()

	_, err := j.db.ExecContext(ctx, `INSERT INTO trades
		(timestamp, symbol, side, qty, price, pnl, outcome, reason, order_id)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		ev.Timestamp.Unix(), ev.Symbol, string(ev.Side), ev.Qty,
		price, pnl, ev.Outcome, ev.Reason, ev.OrderID,
	)
	return err
}

// DaySummary aggregates the trades recorded since a point in time.
type DaySummary struct {
	Submitted int
	Skipped   int
	Rejected  int
	Buys      int
	Sells     int
	TotalPnL  float64
}

// Summarize aggregates activity since the given time.
func (j *SQLiteJournal) Summarize(ctx context.Context, since time.Time) (*DaySummary, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT side, outcome, pnl
		FROM trades WHERE timestamp >= ?`, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	s := &DaySummary{}
	for rows.Next() {
		var side, outcome string
		var pnl float64
		if err := rows.Scan(&side, &outcome, &pnl); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		switch outcome {
		case engine.OutcomeSubmitted:
			s.Submitted++
			if side == string(engine.SideBuy) {
				s.Buys++
			} else {
				s.Sells++
			}
			s.TotalPnL += pnl
		case engine.OutcomeSkipped:
			s.Skipped++
		case engine.OutcomeRejected:
			s.Rejected++
		}
	}
	return s, rows.Err()
}

// Close closes the underlying database.
func (j *SQLiteJournal) Close() error {
	log.Println("[INFO] closing sqlite journal")
	return j.db.Close()
}
