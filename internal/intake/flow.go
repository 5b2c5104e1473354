package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	tele "gopkg.in/telebot.v4"

	"intakebot/core/logger"
	tghelpers "intakebot/core/telegram/helpers"
	"intakebot/core/telegram/state"
	"intakebot/internal/i18n"
	"intakebot/internal/media"
	"intakebot/internal/orders"
)

const draftKey = "intake_draft"

// Publisher turns a completed draft into a published order.
type Publisher interface {
	Publish(ctx context.Context, sub orders.Submission) (orders.Order, error)
}

// Flow wires the conversation steps to the session manager, the media
// batch aggregator, and the order publisher. All collaborators are
// injected; the flow holds no package-level state.
type Flow struct {
	states  state.Manager
	batches *media.Aggregator
	pub     Publisher

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewFlow(states state.Manager, batches *media.Aggregator, pub Publisher) *Flow {
	return &Flow{
		states:  states,
		batches: batches,
		pub:     pub,
		locks:   make(map[int64]*sync.Mutex),
	}
}

// userLock returns the per-user mutex serializing draft hand-off
// between the update goroutine and batch timer resolutions.
func (f *Flow) userLock(userID int64) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		f.locks[userID] = l
	}
	return l
}

// Register binds each conversation step to its handler.
func (f *Flow) Register() {
	state.RegisterHandler(StepName, f.stepText)
	state.RegisterHandler(StepPhone, f.stepText)
	state.RegisterHandler(StepAddress, f.stepText)
	state.RegisterHandler(StepDescription, f.stepText)
	state.RegisterHandler(StepMedia, f.stepMedia)
}

// Begin resets the user's session and starts a fresh form in the given
// locale. Any half-finished draft and pending media batch are dropped.
func (f *Flow) Begin(c tele.Context, loc i18n.Locale) error {
	userID := c.Sender().ID

	lock := f.userLock(userID)
	lock.Lock()
	f.batches.Discard(batchKey(userID))
	f.states.Clear(userID)
	f.states.SetTemp(userID, draftKey, &Draft{Locale: loc})
	f.states.SetState(userID, StepName)
	lock.Unlock()

	logger.Info(tghelpers.BuildContext(c), "service.intake", "form.start",
		slog.Int64("user_id", userID),
		slog.String("locale", string(loc)),
	)
	return tghelpers.SendHTML(c, i18n.Get(loc).Welcome)
}

func (f *Flow) draft(userID int64) (*Draft, bool) {
	v, ok := f.states.GetTemp(userID, draftKey)
	if !ok {
		return nil, false
	}
	d, ok := v.(*Draft)
	return d, ok
}

// stepText collects one free-text answer and advances the form. A
// non-text update during a text step re-prompts the current question.
func (f *Flow) stepText(c tele.Context) error {
	userID := c.Sender().ID
	d, ok := f.draft(userID)
	if !ok {
		return f.restart(c)
	}

	current := f.states.GetState(userID)
	text := c.Text()
	if text == "" {
		return f.reprompt(c, d, current)
	}

	next, prompt, ok := Advance(d, current, text)
	if !ok {
		return f.restart(c)
	}
	f.states.SetState(userID, next)

	logger.Debug(tghelpers.BuildContext(c), "service.intake", "form.step",
		slog.Int64("user_id", userID),
		slog.String("from", string(current)),
		slog.String("to", string(next)),
	)
	return tghelpers.SendHTML(c, prompt)
}

// reprompt repeats the question of the current step without consuming
// the update.
func (f *Flow) reprompt(c tele.Context, d *Draft, current state.State) error {
	msgs := i18n.Get(d.Locale)
	switch current {
	case StepName:
		return tghelpers.SendHTML(c, msgs.Welcome)
	case StepPhone:
		return tghelpers.SendHTML(c, msgs.Phone)
	case StepAddress:
		return tghelpers.SendHTML(c, msgs.Address)
	case StepDescription:
		return tghelpers.SendHTML(c, msgs.Description)
	case StepMedia:
		return tghelpers.SendHTML(c, msgs.Error)
	}
	return f.restart(c)
}

// stepMedia accepts photo and video attachments, the skip token, or
// re-prompts. Album parts are buffered by the aggregator; a solo
// attachment submits immediately.
func (f *Flow) stepMedia(c tele.Context) error {
	userID := c.Sender().ID
	d, ok := f.draft(userID)
	if !ok {
		return f.restart(c)
	}
	msgs := i18n.Get(d.Locale)

	m := c.Message()
	switch {
	case m == nil:
		return tghelpers.SendHTML(c, msgs.Error)
	case m.Photo != nil:
		f.submit(c, d, media.Item{Kind: media.KindPhoto, FileID: m.Photo.FileID}, m.AlbumID)
		return nil
	case m.Video != nil:
		f.submit(c, d, media.Item{Kind: media.KindVideo, FileID: m.Video.FileID}, m.AlbumID)
		return nil
	case i18n.IsSkip(d.Locale, m.Text):
		return f.finish(c, d, nil, true)
	}
	return tghelpers.SendHTML(c, msgs.Error)
}

func (f *Flow) submit(c tele.Context, d *Draft, item media.Item, albumID string) {
	// A lone attachment carries no album ID; the batch resolves at once.
	final := albumID == ""
	f.batches.Submit(batchKey(c.Sender().ID), item, final, func(items []media.Item) {
		_ = f.finish(c, d, items, false)
	})
}

// finish submits the draft. It drops the batch silently if the user has
// since restarted the form: the draft pointer stored in the session is
// the identity of one conversation run. The guard and the claim run
// under the user lock, so of two racing resolutions for the same draft
// exactly one publishes.
func (f *Flow) finish(c tele.Context, d *Draft, items []media.Item, viaSkip bool) error {
	userID := c.Sender().ID
	msgs := i18n.Get(d.Locale)

	lock := f.userLock(userID)
	lock.Lock()
	current, ok := f.draft(userID)
	if !ok || current != d {
		lock.Unlock()
		return nil
	}
	if !viaSkip && len(items) == 0 {
		lock.Unlock()
		return tghelpers.SendHTML(c, msgs.Error)
	}
	// Claim the draft before any network send.
	f.states.Clear(userID)
	lock.Unlock()

	ctx := tghelpers.BuildContext(c)
	o, err := f.pub.Publish(ctx, orders.Submission{
		Name:        d.Name,
		Phone:       d.Phone,
		Address:     d.Address,
		Description: d.Description,
		Attachments: items,
	})
	if err != nil {
		logger.Error(ctx, "service.intake", "form.publish_failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendHTML(c, fmt.Sprintf("❌ Ошибка при отправке:\n<code>%v</code>", err))
	}

	logger.Info(ctx, "service.intake", "form.done",
		slog.Int64("user_id", userID),
		slog.String("order_id", o.ID),
		slog.String("number", o.Number),
		slog.Int("attachments", len(items)),
	)
	if err := tghelpers.SendHTML(c, fmt.Sprintf("%s\n🧾 Номер: #%s\n%s", msgs.Confirm, o.Number, msgs.Contact)); err != nil {
		return err
	}
	return tghelpers.SendHTML(c, msgs.Sent)
}

// restart clears a broken session and points the user back at /start.
func (f *Flow) restart(c tele.Context) error {
	userID := c.Sender().ID
	f.states.Clear(userID)
	return tghelpers.SendHTML(c, i18n.Get(i18n.DefaultLocale).Restart)
}

func batchKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
