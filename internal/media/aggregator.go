// Package media collapses bursts of attachment events that share a
// batch key into one ordered sequence.
package media

import (
	"context"
	"sync"
	"time"

	"intakebot/core/logger"
	"log/slog"
)

// DefaultWindow is the quiescence window applied when none is configured.
const DefaultWindow = 2 * time.Second

// Kind identifies the attachment type accepted by the intake form.
type Kind string

const (
	KindPhoto Kind = "photo"
	KindVideo Kind = "video"
)

// Item is a single attachment reference collected into a batch.
type Item struct {
	Kind   Kind
	FileID string
}

// ResolveFunc receives the flattened batch. It is invoked exactly once
// per batch, from a timer goroutine unless the final-item hint resolved
// the batch synchronously.
type ResolveFunc func(items []Item)

type pending struct {
	items   []Item
	resolve ResolveFunc
	timer   *time.Timer
	gen     int
}

// Aggregator groups attachment events by batch key. A batch resolves
// when the caller flags an item as final or when the quiescence window
// elapses with no further arrivals, whichever comes first. Each key has
// its own timer; a batch waiting out its window never blocks arrivals
// on other keys.
type Aggregator struct {
	mu      sync.Mutex
	window  time.Duration
	batches map[string]*pending
}

// NewAggregator builds an aggregator with the given quiescence window.
// Non-positive windows fall back to DefaultWindow.
func NewAggregator(window time.Duration) *Aggregator {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Aggregator{
		window:  window,
		batches: make(map[string]*pending),
	}
}

// Submit appends item to the batch under key and (re)arms its timer.
// The resolve callback of the most recent submission wins; earlier
// callbacks for the same key are discarded, so each batch is delivered
// exactly once. When final is true the batch resolves synchronously.
func (a *Aggregator) Submit(key string, item Item, final bool, resolve ResolveFunc) {
	a.mu.Lock()
	p, ok := a.batches[key]
	if !ok {
		p = &pending{}
		a.batches[key] = p
	}
	p.items = append(p.items, item)
	p.resolve = resolve
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}

	logger.Debug(context.Background(), "service.media", "batch.append",
		slog.String("key", key),
		slog.String("kind", string(item.Kind)),
		slog.Int("size", len(p.items)),
		slog.Bool("final", final),
	)

	if final {
		delete(a.batches, key)
		items := p.items
		a.mu.Unlock()
		a.deliver(key, items, resolve)
		return
	}

	gen := p.gen
	p.timer = time.AfterFunc(a.window, func() { a.expire(key, gen) })
	a.mu.Unlock()
}

// Discard drops any pending batch under key without resolving it. Used
// when the owning conversation is abandoned.
func (a *Aggregator) Discard(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p, ok := a.batches[key]; ok {
		if p.timer != nil {
			p.timer.Stop()
		}
		delete(a.batches, key)
	}
}

// Pending reports whether a batch is currently open under key.
func (a *Aggregator) Pending(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.batches[key]
	return ok
}

func (a *Aggregator) expire(key string, gen int) {
	a.mu.Lock()
	p, ok := a.batches[key]
	if !ok || p.gen != gen {
		// Resolved by a final hint or superseded by a newer arrival.
		a.mu.Unlock()
		return
	}
	delete(a.batches, key)
	items, resolve := p.items, p.resolve
	a.mu.Unlock()
	a.deliver(key, items, resolve)
}

func (a *Aggregator) deliver(key string, items []Item, resolve ResolveFunc) {
	logger.Debug(context.Background(), "service.media", "batch.resolve",
		slog.String("key", key),
		slog.Int("size", len(items)),
	)
	if resolve != nil {
		resolve(items)
	}
}
