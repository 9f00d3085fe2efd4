package engine

import (
	"sync"
	"time"
)

// SkipReason explains why a gate refused an intent. The strings double as
// the "reason" field in the webhook response.
type SkipReason string

const (
	ReasonAlreadyEnteredThisBar SkipReason = "Already entered this bar"
	ReasonPositionLimitReached  SkipReason = "Position limit reached"
	ReasonNoPositionToExit      SkipReason = "No position to exit"
)

// EntryGate guards buy intents with two rules: at most one entry per minute
// bar, and never while the open position has reached the configured limit.
//
// The bar watermark is global across symbols. Whether dedup should be per
// symbol is an open design question; see DESIGN.md.
type EntryGate struct {
	mu            sync.Mutex
	lastEntryBar  time.Time // zero until the first accepted entry
	positionLimit int64
	now           func() time.Time
}

// NewEntryGate creates a gate with an unset watermark.
func NewEntryGate(positionLimit int64) *EntryGate {
	return &EntryGate{
		positionLimit: positionLimit,
		now:           time.Now,
	}
}

// Check decides whether a buy may proceed given the currently held
// quantity. On acceptance the watermark advances to the current bar before
// the method returns, so the read-check-update sequence is atomic with
// respect to concurrent requests: of any number of buys landing in the same
// bar, exactly one passes.
func (g *EntryGate) Check(position int64) (SkipReason, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	bar := g.now().UTC().Truncate(time.Minute)
	if !g.lastEntryBar.IsZero() && g.lastEntryBar.Equal(bar) {
		return ReasonAlreadyEnteredThisBar, false
	}
	if position >= g.positionLimit {
		return ReasonPositionLimitReached, false
	}
	g.lastEntryBar = bar
	return "", true
}

// CheckExit decides whether a sell may proceed. Anything but a flat
// position passes; the quantity sold is not capped to the held size, so a
// mismatch is passed through to the broker.
func CheckExit(position int64) (SkipReason, bool) {
	if position == 0 {
		return ReasonNoPositionToExit, false
	}
	return "", true
}
