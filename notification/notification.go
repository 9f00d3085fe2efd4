// Package notification fans trade events out to best-effort sinks:
// Discord, Notion, the trade journal, and an in-memory activity feed.
// Sink failures are logged and counted, never surfaced to the caller.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redwarrior112/ema-webhook-trader/engine"
)

// Sink records one trade event somewhere. Implementations are called on
// their own goroutine with a bounded context.
type Sink interface {
	Name() string
	Record(ctx context.Context, ev engine.TradeEvent) error
}

// Activity is a trade event annotated for the in-memory feed.
type Activity struct {
	ID    string            `json:"id"`
	Event engine.TradeEvent `json:"event"`
	Seen  time.Time         `json:"seen"`
}

// Manager keeps the most recent trade activity in memory for the read API.
type Manager struct {
	activities []Activity
	maxEntries int
	mutex      sync.RWMutex
}

// NewManager creates a manager retaining up to maxEntries activities.
func NewManager(maxEntries int) *Manager {
	return &Manager{maxEntries: maxEntries}
}

// Name implements Sink.
func (m *Manager) Name() string { return "memory" }

// Record implements Sink, storing the event in reverse chronological order.
func (m *Manager) Record(ctx context.Context, ev engine.TradeEvent) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	activity := Activity{
		ID:    uuid.New().String(),
		Event: ev,
		Seen:  time.Now().UTC(),
	}
	m.activities = append([]Activity{activity}, m.activities...)
	if len(m.activities) > m.maxEntries {
		m.activities = m.activities[:m.maxEntries]
	}
	return nil
}

// Recent returns a copy of the stored activities, newest first.
func (m *Manager) Recent() []Activity {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	out := make([]Activity, len(m.activities))
	copy(out, m.activities)
	return out
}

// RecentBySymbol returns stored activities for one symbol, newest first.
func (m *Manager) RecentBySymbol(symbol string) []Activity {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var out []Activity
	for _, a := range m.activities {
		if a.Event.Symbol == symbol {
			out = append(out, a)
		}
	}
	return out
}
