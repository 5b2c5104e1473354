package bot

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"intakebot/internal/media"
	"intakebot/internal/orders"
)

// ErrChannelNotBound is returned when a send is attempted before the
// bot instance has been attached.
var ErrChannelNotBound = errors.New("bot: operator channel not bound")

// OperatorChannel publishes order cards into the operator group chat.
// The bot instance is bound at startup, after the runtime is built.
type OperatorChannel struct {
	chatID int64
	bot    atomic.Pointer[tele.Bot]
}

func NewOperatorChannel(chatID int64) *OperatorChannel {
	return &OperatorChannel{chatID: chatID}
}

// Bind attaches the running bot to the channel.
func (ch *OperatorChannel) Bind(b *tele.Bot) {
	ch.bot.Store(b)
}

func (ch *OperatorChannel) ChatID() int64 { return ch.chatID }

// SendAlbum sends the attachments as one media group and returns the
// resulting message IDs in send order.
func (ch *OperatorChannel) SendAlbum(_ context.Context, items []media.Item) ([]int, error) {
	b := ch.bot.Load()
	if b == nil {
		return nil, ErrChannelNotBound
	}

	album := make(tele.Album, 0, len(items))
	for _, it := range items {
		switch it.Kind {
		case media.KindVideo:
			album = append(album, &tele.Video{File: tele.File{FileID: it.FileID}})
		default:
			album = append(album, &tele.Photo{File: tele.File{FileID: it.FileID}})
		}
	}

	msgs, err := b.SendAlbum(tele.ChatID(ch.chatID), album)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	return ids, nil
}

// SendCard posts the card text with the status keyboard, optionally as
// a reply to the last album message.
func (ch *OperatorChannel) SendCard(_ context.Context, text, orderID string, replyTo int) (int, error) {
	b := ch.bot.Load()
	if b == nil {
		return 0, ErrChannelNotBound
	}

	opts := &tele.SendOptions{
		ParseMode:   tele.ModeHTML,
		ReplyMarkup: StatusKeyboard(orderID),
	}
	if replyTo != 0 {
		opts.ReplyTo = &tele.Message{ID: replyTo, Chat: &tele.Chat{ID: ch.chatID}}
	}

	msg, err := b.Send(tele.ChatID(ch.chatID), text, opts)
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// EditCard rewrites the card text in place, keeping the status keyboard.
func (ch *OperatorChannel) EditCard(_ context.Context, card orders.Card, text, orderID string) error {
	b := ch.bot.Load()
	if b == nil {
		return ErrChannelNotBound
	}

	ref := &tele.StoredMessage{
		MessageID: strconv.Itoa(card.MessageID),
		ChatID:    card.ChatID,
	}
	_, err := b.Edit(ref, text, &tele.SendOptions{
		ParseMode:   tele.ModeHTML,
		ReplyMarkup: StatusKeyboard(orderID),
	})
	return err
}

func (ch *OperatorChannel) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	b := ch.bot.Load()
	if b == nil {
		return ErrChannelNotBound
	}
	return b.Delete(&tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	})
}
