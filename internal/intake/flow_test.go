package intake

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"intakebot/core/telegram/state"
	"intakebot/internal/i18n"
	"intakebot/internal/media"
	"intakebot/internal/orders"
)

// fakeContext implements the slice of tele.Context the flow touches.
// Unimplemented methods panic via the embedded nil interface.
type fakeContext struct {
	tele.Context

	mu   sync.Mutex
	user *tele.User
	msg  *tele.Message
	data map[string]interface{}
	sent []string
}

func newFakeContext(userID int64) *fakeContext {
	return &fakeContext{
		user: &tele.User{ID: userID},
		data: make(map[string]interface{}),
	}
}

func (c *fakeContext) Update() tele.Update { return tele.Update{} }
func (c *fakeContext) Sender() *tele.User  { return c.user }

func (c *fakeContext) Chat() *tele.Chat {
	return &tele.Chat{ID: c.user.ID, Type: tele.ChatPrivate}
}

func (c *fakeContext) Message() *tele.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.msg
}

func (c *fakeContext) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.msg == nil {
		return ""
	}
	return c.msg.Text
}

func (c *fakeContext) Get(key string) interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key]
}

func (c *fakeContext) Set(key string, v interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = v
}

func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if text, ok := what.(string); ok {
		c.sent = append(c.sent, text)
	}
	return nil
}

func (c *fakeContext) setText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msg = &tele.Message{Text: text}
}

func (c *fakeContext) setPhoto(fileID, albumID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msg = &tele.Message{
		Photo:   &tele.Photo{File: tele.File{FileID: fileID}},
		AlbumID: albumID,
	}
}

func (c *fakeContext) lastSent() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return ""
	}
	return c.sent[len(c.sent)-1]
}

func (c *fakeContext) sentTexts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

type fakePublisher struct {
	mu    sync.Mutex
	calls []orders.Submission
	fail  error
}

func (p *fakePublisher) Publish(_ context.Context, sub orders.Submission) (orders.Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return orders.Order{}, p.fail
	}
	p.calls = append(p.calls, sub)
	return orders.Order{ID: "order-1", Number: "REQ-07152024-001"}, nil
}

func (p *fakePublisher) published() []orders.Submission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]orders.Submission(nil), p.calls...)
}

func newTestFlow(window time.Duration) (*Flow, *fakePublisher) {
	pub := &fakePublisher{}
	f := NewFlow(state.NewMemoryManager(), media.NewAggregator(window), pub)
	return f, pub
}

// walkToMedia runs the form through the text steps up to the media step.
func walkToMedia(t *testing.T, f *Flow, c *fakeContext, loc i18n.Locale) {
	t.Helper()
	require.NoError(t, f.Begin(c, loc))
	for _, answer := range []string{"Иван", "555-0100", "ул. Ленина, 1", "Починить кран"} {
		c.setText(answer)
		require.NoError(t, f.stepText(c))
	}
	require.Equal(t, StepMedia, f.states.GetState(c.user.ID))
}

func TestSkipSubmitsWithoutAttachments(t *testing.T) {
	f, pub := newTestFlow(time.Hour)
	c := newFakeContext(7)
	walkToMedia(t, f, c, i18n.LocaleRU)

	c.setText("Пропустить")
	require.NoError(t, f.stepMedia(c))

	calls := pub.published()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Attachments)
	assert.Equal(t, "Иван", calls[0].Name)
	assert.Equal(t, "555-0100", calls[0].Phone)
	assert.Equal(t, "ул. Ленина, 1", calls[0].Address)
	assert.Equal(t, "Починить кран", calls[0].Description)

	assert.False(t, f.states.InProgress(7))
	sent := c.sentTexts()
	require.NotEmpty(t, sent)
	assert.Contains(t, sent[len(sent)-2], "#REQ-07152024-001")
	assert.Equal(t, i18n.Get(i18n.LocaleRU).Sent, sent[len(sent)-1])
}

func TestSoloAttachmentSubmitsImmediately(t *testing.T) {
	f, pub := newTestFlow(time.Hour)
	c := newFakeContext(7)
	walkToMedia(t, f, c, i18n.LocaleEN)

	c.setPhoto("photo-1", "")
	require.NoError(t, f.stepMedia(c))

	calls := pub.published()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Attachments, 1)
	assert.Equal(t, media.Item{Kind: media.KindPhoto, FileID: "photo-1"}, calls[0].Attachments[0])
	assert.False(t, f.states.InProgress(7))
}

func TestMediaStepRepromptsOnUnexpectedText(t *testing.T) {
	f, pub := newTestFlow(time.Hour)
	c := newFakeContext(7)
	walkToMedia(t, f, c, i18n.LocaleRU)

	c.setText("просто текст")
	require.NoError(t, f.stepMedia(c))

	assert.Empty(t, pub.published())
	assert.Equal(t, StepMedia, f.states.GetState(7))
	assert.Equal(t, i18n.Get(i18n.LocaleRU).Error, c.lastSent())
}

func TestPublishFailureReportedToSubmitter(t *testing.T) {
	f, pub := newTestFlow(time.Hour)
	pub.fail = errors.New("chat not found")
	c := newFakeContext(7)
	walkToMedia(t, f, c, i18n.LocaleRU)

	c.setText("пропустить")
	require.NoError(t, f.stepMedia(c))

	assert.Contains(t, c.lastSent(), "❌ Ошибка при отправке:")
	assert.Contains(t, c.lastSent(), "<code>chat not found</code>")
	assert.False(t, f.states.InProgress(7))
}

func TestBeginDiscardsPendingBatch(t *testing.T) {
	f, pub := newTestFlow(time.Hour)
	c := newFakeContext(7)
	walkToMedia(t, f, c, i18n.LocaleRU)

	c.setPhoto("photo-1", "album-1")
	require.NoError(t, f.stepMedia(c))
	require.True(t, f.batches.Pending("7"))

	require.NoError(t, f.Begin(c, i18n.LocaleEN))
	assert.False(t, f.batches.Pending("7"))
	assert.Equal(t, StepName, f.states.GetState(7))
	assert.Empty(t, pub.published())
}

func TestStaleBatchResolutionDropped(t *testing.T) {
	f, pub := newTestFlow(time.Hour)
	c := newFakeContext(7)
	walkToMedia(t, f, c, i18n.LocaleRU)

	stale, ok := f.draft(7)
	require.True(t, ok)

	// The form restarts before the batch resolves; the resolution for
	// the previous run must be dropped without publishing or messaging.
	require.NoError(t, f.Begin(c, i18n.LocaleEN))
	before := len(c.sentTexts())

	items := []media.Item{{Kind: media.KindPhoto, FileID: "photo-1"}}
	require.NoError(t, f.finish(c, stale, items, false))

	assert.Empty(t, pub.published())
	assert.Len(t, c.sentTexts(), before)
	assert.Equal(t, StepName, f.states.GetState(7))
}

func TestConcurrentResolutionsPublishOnce(t *testing.T) {
	f, pub := newTestFlow(time.Hour)
	c := newFakeContext(7)
	walkToMedia(t, f, c, i18n.LocaleRU)

	d, ok := f.draft(7)
	require.True(t, ok)
	items := []media.Item{{Kind: media.KindPhoto, FileID: "photo-1"}}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.finish(c, d, items, false)
		}()
	}
	wg.Wait()

	assert.Len(t, pub.published(), 1)
	assert.False(t, f.states.InProgress(7))
}

func TestHandlersRestartWithoutDraft(t *testing.T) {
	f, pub := newTestFlow(time.Hour)
	c := newFakeContext(7)

	c.setText("Иван")
	require.NoError(t, f.stepText(c))
	assert.Equal(t, i18n.Get(i18n.DefaultLocale).Restart, c.lastSent())

	c.setPhoto("photo-1", "")
	require.NoError(t, f.stepMedia(c))
	assert.Equal(t, i18n.Get(i18n.DefaultLocale).Restart, c.lastSent())
	assert.Empty(t, pub.published())
}
