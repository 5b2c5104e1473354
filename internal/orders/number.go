package orders

import (
	"fmt"
	"sync"
	"time"
)

const dateKeyLayout = "01022006"

// Numbering hands out display numbers of the form REQ-<MMDDYYYY>-<NNN>,
// where NNN restarts at 001 each calendar day.
//
// The counter lives in process memory only: it resets on restart and is
// not shared between instances, so numbers are sequential per process
// per day rather than globally. Deployments that need restart-safe or
// multi-instance numbering must move this counter into external
// storage.
type Numbering struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewNumbering builds an empty per-day counter.
func NewNumbering() *Numbering {
	return &Numbering{counters: make(map[string]int)}
}

// Next returns the display number for an order created at t.
func (n *Numbering) Next(t time.Time) string {
	key := t.Format(dateKeyLayout)
	n.mu.Lock()
	defer n.mu.Unlock()
	n.counters[key]++
	return fmt.Sprintf("REQ-%s-%03d", key, n.counters[key])
}
