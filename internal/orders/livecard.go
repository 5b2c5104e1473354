package orders

import "sync"

// Card tracks the operator-channel messages rendered for one order: the
// card message itself and the attachment-group messages published ahead
// of it. It is what a later transition needs to find and edit or delete
// the right messages.
type Card struct {
	ChatID    int64
	MessageID int
	MediaIDs  []int
}

// CardRegistry maps order identity to its live card. Entries are
// process-local and vanish on restart; a transition on an order with no
// entry is reported as the card being missing, not an error.
type CardRegistry struct {
	mu    sync.RWMutex
	cards map[string]Card
}

// NewCardRegistry builds an empty registry.
func NewCardRegistry() *CardRegistry {
	return &CardRegistry{cards: make(map[string]Card)}
}

// Put records the card for an order, replacing any prior entry.
func (r *CardRegistry) Put(orderID string, card Card) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards[orderID] = card
}

// Get returns the card for an order if one is registered.
func (r *CardRegistry) Get(orderID string) (Card, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	card, ok := r.cards[orderID]
	return card, ok
}

// Remove discards the card entry for an order.
func (r *CardRegistry) Remove(orderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cards, orderID)
}

// Len reports the number of registered cards.
func (r *CardRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cards)
}
