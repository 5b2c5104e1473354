// Package orders implements the order lifecycle: identity assignment,
// persistence, operator-card publication, and the status transition
// protocol between the live card and the stored record.
package orders

import (
	"errors"
	"strings"
	"time"

	"intakebot/internal/media"
)

// Status enumerates the lifecycle states of an order. The canonical
// value is persisted; the operator card shows a localized title.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusDeleted    Status = "deleted"
)

// Order is the durable record produced by a completed intake
// conversation. ID is an opaque token, unique and immutable once
// assigned; Number is the human-readable per-day display number.
type Order struct {
	ID          string    `db:"id"`
	Number      string    `db:"req_number"`
	Name        string    `db:"name"`
	Phone       string    `db:"phone"`
	Address     string    `db:"address"`
	Description string    `db:"description"`
	Status      Status    `db:"status"`
	Media       string    `db:"media"`
	Comment     string    `db:"comment"`
	CreatedAt   time.Time `db:"created_at"`
}

// Update is one append-only audit row. Rows are never mutated or
// deleted; per-order ordering follows the insertion sequence.
type Update struct {
	ID        int64     `db:"id"`
	OrderID   string    `db:"order_id"`
	Kind      Status    `db:"kind"`
	Media     string    `db:"media"`
	Comment   string    `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
}

// Action is an operator button press on a live card.
type Action string

const (
	ActionInProgress Action = "in_progress"
	ActionDone       Action = "done"
	ActionDelete     Action = "delete"
)

// Status maps the action to the status it applies.
func (a Action) Status() (Status, bool) {
	switch a {
	case ActionInProgress:
		return StatusInProgress, true
	case ActionDone:
		return StatusDone, true
	case ActionDelete:
		return StatusDeleted, true
	}
	return "", false
}

// Sentinel outcomes shared between the service and its storage.
var (
	ErrAlreadyExists = errors.New("orders: order already exists")
	ErrNotFound      = errors.New("orders: order not found")
	ErrCardNotFound  = errors.New("orders: no live card for order")
	ErrUnknownAction = errors.New("orders: unknown action")
)

// MediaRefs joins attachment file references into the single media
// column of the order record. Empty input yields an empty reference.
func MediaRefs(items []media.Item) string {
	if len(items) == 0 {
		return ""
	}
	refs := make([]string, len(items))
	for i, it := range items {
		refs[i] = it.FileID
	}
	return strings.Join(refs, ",")
}
