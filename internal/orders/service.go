package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"intakebot/core/logger"
	"intakebot/internal/media"
	"log/slog"
)

// Repository is the storage contract for orders and their audit trail.
type Repository interface {
	// CreateOrder persists a new order. ErrAlreadyExists is returned for
	// a duplicate identity; the existing record is never overwritten.
	CreateOrder(ctx context.Context, o Order) error
	SetStatus(ctx context.Context, orderID string, st Status) error
	AppendUpdate(ctx context.Context, u Update) error
	GetOrder(ctx context.Context, orderID string) (Order, error)
	ListUpdates(ctx context.Context, orderID string) ([]Update, error)
}

// Channel abstracts the operator-channel transport. Message identities
// are returned so the service can track them in the card registry.
type Channel interface {
	ChatID() int64
	SendAlbum(ctx context.Context, items []media.Item) ([]int, error)
	SendCard(ctx context.Context, text, orderID string, replyTo int) (int, error)
	EditCard(ctx context.Context, card Card, text, orderID string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// Submission carries the collected form fields and the resolved
// attachment sequence handed over by a completed conversation.
type Submission struct {
	Name        string
	Phone       string
	Address     string
	Description string
	Attachments []media.Item
}

// Outcome reports how a status action was applied.
type Outcome int

const (
	// OutcomeApplied means the status changed, was persisted and audited.
	OutcomeApplied Outcome = iota
	// OutcomeAlreadySet means the order already carried the status.
	OutcomeAlreadySet
	// OutcomeDeleted means the card and its attachments were removed.
	OutcomeDeleted
)

// Service owns the order lifecycle: publishing new orders to the
// operator channel and applying operator status actions to them.
type Service struct {
	repo    Repository
	channel Channel
	cards   *CardRegistry
	numbers *Numbering

	now   func() time.Time
	newID func() string
}

// NewService wires a lifecycle service over the given storage and
// operator channel.
func NewService(repo Repository, channel Channel) *Service {
	return &Service{
		repo:    repo,
		channel: channel,
		cards:   NewCardRegistry(),
		numbers: NewNumbering(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Cards exposes the live card registry.
func (s *Service) Cards() *CardRegistry { return s.cards }

// Publish assigns identity and a display number to the submission,
// persists it with status new, and renders it into the operator channel
// as attachments (if any) followed by an action card. The card registry
// entry is recorded only after every send succeeded.
//
// The order is durable before the channel sends start, so a transport
// failure here leaves a stored order with no visible card. The error is
// returned raw so the caller can surface it to the submitting user.
func (s *Service) Publish(ctx context.Context, sub Submission) (Order, error) {
	now := s.now()
	o := Order{
		ID:          s.newID(),
		Number:      s.numbers.Next(now),
		Name:        sub.Name,
		Phone:       sub.Phone,
		Address:     sub.Address,
		Description: sub.Description,
		Status:      StatusNew,
		Media:       MediaRefs(sub.Attachments),
		CreatedAt:   now,
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		if !errors.Is(err, ErrAlreadyExists) {
			return Order{}, fmt.Errorf("create order: %w", err)
		}
		logger.Warn(ctx, "service.orders", "order.duplicate",
			slog.String("order_id", o.ID),
		)
	}

	var mediaIDs []int
	replyTo := 0
	if len(sub.Attachments) > 0 {
		ids, err := s.channel.SendAlbum(ctx, sub.Attachments)
		if err != nil {
			logger.Error(ctx, "service.orders", "publish.album_failed",
				slog.String("order_id", o.ID),
				slog.String("err", err.Error()),
			)
			return Order{}, fmt.Errorf("publish attachments: %w", err)
		}
		mediaIDs = ids
		if len(ids) > 0 {
			replyTo = ids[len(ids)-1]
		}
	}

	msgID, err := s.channel.SendCard(ctx, Render(o), o.ID, replyTo)
	if err != nil {
		logger.Error(ctx, "service.orders", "publish.card_failed",
			slog.String("order_id", o.ID),
			slog.String("err", err.Error()),
		)
		return Order{}, fmt.Errorf("publish card: %w", err)
	}

	s.cards.Put(o.ID, Card{
		ChatID:    s.channel.ChatID(),
		MessageID: msgID,
		MediaIDs:  mediaIDs,
	})

	logger.Info(ctx, "service.orders", "order.published",
		slog.String("order_id", o.ID),
		slog.String("number", o.Number),
		slog.Int("attachments", len(mediaIDs)),
	)
	return o, nil
}

// Apply maps an operator action on a card to a status transition.
// Reapplying the current status is a reported no-op. Delete removes the
// card and its attachment messages and is terminal. Status is persisted
// and audited only after the channel edit succeeded, so the stored
// status never runs ahead of the displayed card.
func (s *Service) Apply(ctx context.Context, orderID string, action Action) (Outcome, error) {
	target, ok := action.Status()
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	card, ok := s.cards.Get(orderID)
	if !ok {
		return 0, ErrCardNotFound
	}

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return 0, fmt.Errorf("load order %s: %w", orderID, err)
	}

	if o.Status == StatusDeleted || o.Status == target {
		// Deleted is terminal; other repeats are plain no-ops.
		return OutcomeAlreadySet, nil
	}

	if action == ActionDelete {
		return s.applyDelete(ctx, o, card)
	}

	o.Status = target
	if err := s.channel.EditCard(ctx, card, Render(o), o.ID); err != nil {
		logger.Error(ctx, "service.orders", "transition.edit_failed",
			slog.String("order_id", o.ID),
			slog.String("status", string(target)),
			slog.String("err", err.Error()),
		)
		return 0, fmt.Errorf("edit card: %w", err)
	}

	if err := s.finishTransition(ctx, o.ID, target); err != nil {
		return 0, err
	}
	return OutcomeApplied, nil
}

func (s *Service) applyDelete(ctx context.Context, o Order, card Card) (Outcome, error) {
	for _, id := range card.MediaIDs {
		if err := s.channel.DeleteMessage(ctx, card.ChatID, id); err != nil {
			// Best effort: a stuck attachment must not keep the card alive.
			logger.Warn(ctx, "service.orders", "delete.media_failed",
				slog.String("order_id", o.ID),
				slog.Int("message_id", id),
				slog.String("err", err.Error()),
			)
		}
	}

	if err := s.channel.DeleteMessage(ctx, card.ChatID, card.MessageID); err != nil {
		logger.Error(ctx, "service.orders", "delete.card_failed",
			slog.String("order_id", o.ID),
			slog.String("err", err.Error()),
		)
		return 0, fmt.Errorf("delete card: %w", err)
	}
	s.cards.Remove(o.ID)

	if err := s.finishTransition(ctx, o.ID, StatusDeleted); err != nil {
		return 0, err
	}
	return OutcomeDeleted, nil
}

// finishTransition is the single persist+audit path every transition,
// including delete, goes through.
func (s *Service) finishTransition(ctx context.Context, orderID string, st Status) error {
	if err := s.repo.SetStatus(ctx, orderID, st); err != nil {
		return fmt.Errorf("persist status: %w", err)
	}
	if err := s.repo.AppendUpdate(ctx, Update{OrderID: orderID, Kind: st, CreatedAt: s.now()}); err != nil {
		return fmt.Errorf("append update: %w", err)
	}
	logger.Info(ctx, "service.orders", "order.status",
		slog.String("order_id", orderID),
		slog.String("status", string(st)),
	)
	return nil
}

// History returns the audit trail of an order in insertion order.
func (s *Service) History(ctx context.Context, orderID string) ([]Update, error) {
	updates, err := s.repo.ListUpdates(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list updates for %s: %w", orderID, err)
	}
	return updates, nil
}
