package notification

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redwarrior112/ema-webhook-trader/engine"
	"github.com/redwarrior112/ema-webhook-trader/metrics"
)

// Dispatcher delivers trade events to every sink on independent goroutines.
// Publishing never blocks the decision path and a failing sink only shows
// up in the logs and the failure counter.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher with a per-sink delivery timeout.
func NewDispatcher(timeout time.Duration, sinks ...Sink) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{sinks: sinks, timeout: timeout}
}

// Publish implements engine.EventSink.
func (d *Dispatcher) Publish(ev engine.TradeEvent) {
	for _, sink := range d.sinks {
		d.wg.Add(1)
		go func(s Sink) {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()
			if err := s.Record(ctx, ev); err != nil {
				metrics.IncNotifyFailure(s.Name())
				log.Printf("[WARN] %s sink failed for %s %s: %v", s.Name(), ev.Side, ev.Symbol, err)
			}
		}(sink)
	}
}

// Drain waits for in-flight deliveries, used on shutdown and in tests.
func (d *Dispatcher) Drain() {
	d.wg.Wait()
}
