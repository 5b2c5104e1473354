package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intakebot/internal/media"
)

type fakeRepo struct {
	orders  map[string]Order
	updates []Update

	failCreate error
	failGet    error
	failSet    error
	failAppend error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[string]Order)}
}

func (r *fakeRepo) CreateOrder(_ context.Context, o Order) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	if _, ok := r.orders[o.ID]; ok {
		return ErrAlreadyExists
	}
	r.orders[o.ID] = o
	return nil
}

func (r *fakeRepo) SetStatus(_ context.Context, orderID string, st Status) error {
	if r.failSet != nil {
		return r.failSet
	}
	o, ok := r.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.Status = st
	r.orders[orderID] = o
	return nil
}

func (r *fakeRepo) AppendUpdate(_ context.Context, u Update) error {
	if r.failAppend != nil {
		return r.failAppend
	}
	u.ID = int64(len(r.updates) + 1)
	r.updates = append(r.updates, u)
	return nil
}

func (r *fakeRepo) GetOrder(_ context.Context, orderID string) (Order, error) {
	if r.failGet != nil {
		return Order{}, r.failGet
	}
	o, ok := r.orders[orderID]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (r *fakeRepo) ListUpdates(_ context.Context, orderID string) ([]Update, error) {
	var out []Update
	for _, u := range r.updates {
		if u.OrderID == orderID {
			out = append(out, u)
		}
	}
	return out, nil
}

type sentCard struct {
	text    string
	orderID string
	replyTo int
}

type fakeChannel struct {
	nextID  int
	albums  [][]media.Item
	cards   []sentCard
	edits   []sentCard
	deleted []int

	failAlbum  error
	failSend   error
	failEdit   error
	failDelete map[int]error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{failDelete: make(map[int]error)}
}

func (ch *fakeChannel) ChatID() int64 { return -100500 }

func (ch *fakeChannel) SendAlbum(_ context.Context, items []media.Item) ([]int, error) {
	if ch.failAlbum != nil {
		return nil, ch.failAlbum
	}
	ch.albums = append(ch.albums, items)
	ids := make([]int, len(items))
	for i := range items {
		ch.nextID++
		ids[i] = ch.nextID
	}
	return ids, nil
}

func (ch *fakeChannel) SendCard(_ context.Context, text, orderID string, replyTo int) (int, error) {
	if ch.failSend != nil {
		return 0, ch.failSend
	}
	ch.nextID++
	ch.cards = append(ch.cards, sentCard{text: text, orderID: orderID, replyTo: replyTo})
	return ch.nextID, nil
}

func (ch *fakeChannel) EditCard(_ context.Context, card Card, text, orderID string) error {
	if ch.failEdit != nil {
		return ch.failEdit
	}
	ch.edits = append(ch.edits, sentCard{text: text, orderID: orderID, replyTo: card.MessageID})
	return nil
}

func (ch *fakeChannel) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	if err, ok := ch.failDelete[messageID]; ok {
		return err
	}
	ch.deleted = append(ch.deleted, messageID)
	return nil
}

func newTestService(repo *fakeRepo, ch *fakeChannel) *Service {
	s := NewService(repo, ch)
	s.now = func() time.Time { return time.Date(2024, 7, 15, 14, 30, 0, 0, time.UTC) }
	seq := 0
	s.newID = func() string {
		seq++
		return fmt.Sprintf("00000000-0000-0000-0000-%012d", seq)
	}
	return s
}

func sampleSubmission() Submission {
	return Submission{
		Name:        "J. Doe",
		Phone:       "555-0100",
		Address:     "1 Main St",
		Description: "Fix sink",
	}
}

func TestPublishWithoutAttachments(t *testing.T) {
	repo := newFakeRepo()
	ch := newFakeChannel()
	s := newTestService(repo, ch)

	o, err := s.Publish(context.Background(), sampleSubmission())
	require.NoError(t, err)

	assert.Equal(t, "REQ-07152024-001", o.Number)
	assert.Equal(t, StatusNew, o.Status)
	assert.Empty(t, o.Media)

	stored, ok := repo.orders[o.ID]
	require.True(t, ok)
	assert.Equal(t, "J. Doe", stored.Name)
	assert.Equal(t, "555-0100", stored.Phone)
	assert.Equal(t, "1 Main St", stored.Address)
	assert.Equal(t, "Fix sink", stored.Description)

	require.Len(t, ch.cards, 1)
	assert.Empty(t, ch.albums)
	assert.Zero(t, ch.cards[0].replyTo)
	assert.Contains(t, ch.cards[0].text, "#REQ-07152024-001")

	_, ok = s.Cards().Get(o.ID)
	assert.True(t, ok)
}

func TestPublishNumbersOrdersSequentially(t *testing.T) {
	s := newTestService(newFakeRepo(), newFakeChannel())

	first, err := s.Publish(context.Background(), sampleSubmission())
	require.NoError(t, err)
	second, err := s.Publish(context.Background(), sampleSubmission())
	require.NoError(t, err)

	assert.Equal(t, "REQ-07152024-001", first.Number)
	assert.Equal(t, "REQ-07152024-002", second.Number)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestPublishWithAttachments(t *testing.T) {
	repo := newFakeRepo()
	ch := newFakeChannel()
	s := newTestService(repo, ch)

	sub := sampleSubmission()
	sub.Attachments = []media.Item{
		{Kind: media.KindPhoto, FileID: "p1"},
		{Kind: media.KindVideo, FileID: "v1"},
	}

	o, err := s.Publish(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "p1,v1", o.Media)

	require.Len(t, ch.albums, 1)
	assert.Equal(t, sub.Attachments, ch.albums[0])

	// The card replies to the last album message.
	require.Len(t, ch.cards, 1)
	assert.Equal(t, 2, ch.cards[0].replyTo)

	card, ok := s.Cards().Get(o.ID)
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, card.MediaIDs)
	assert.Equal(t, 3, card.MessageID)
}

func TestPublishCardFailureLeavesOrderDurable(t *testing.T) {
	repo := newFakeRepo()
	ch := newFakeChannel()
	ch.failSend = errors.New("chat not found")
	s := newTestService(repo, ch)

	_, err := s.Publish(context.Background(), sampleSubmission())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")

	// The order outlives the failed publish; no card is registered.
	assert.Len(t, repo.orders, 1)
	assert.Zero(t, s.Cards().Len())
}

func TestPublishDuplicateIdentityIgnored(t *testing.T) {
	repo := newFakeRepo()
	ch := newFakeChannel()
	s := newTestService(repo, ch)
	s.newID = func() string { return "fixed-id" }

	repo.orders["fixed-id"] = Order{ID: "fixed-id", Name: "original"}

	_, err := s.Publish(context.Background(), sampleSubmission())
	require.NoError(t, err)
	assert.Equal(t, "original", repo.orders["fixed-id"].Name)
}

func TestPublishAssignsOpaqueIdentity(t *testing.T) {
	s := NewService(newFakeRepo(), newFakeChannel())
	o, err := s.Publish(context.Background(), sampleSubmission())
	require.NoError(t, err)
	_, err = uuid.Parse(o.ID)
	assert.NoError(t, err)
}

func TestApplyTransitionPersistsAndAudits(t *testing.T) {
	repo := newFakeRepo()
	ch := newFakeChannel()
	s := newTestService(repo, ch)

	o, err := s.Publish(context.Background(), sampleSubmission())
	require.NoError(t, err)

	outcome, err := s.Apply(context.Background(), o.ID, ActionDone)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	assert.Equal(t, StatusDone, repo.orders[o.ID].Status)
	require.Len(t, repo.updates, 1)
	assert.Equal(t, StatusDone, repo.updates[0].Kind)
	assert.Equal(t, o.ID, repo.updates[0].OrderID)

	require.Len(t, ch.edits, 1)
	assert.Contains(t, ch.edits[0].text, "выполнено")
}

func TestApplySameStatusTwiceIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	ch := newFakeChannel()
	s := newTestService(repo, ch)

	o, err := s.Publish(context.Background(), sampleSubmission())
	require.NoError(t, err)

	_, err = s.Apply(context.Background(), o.ID, ActionInProgress)
	require.NoError(t, err)
	outcome, err := s.Apply(context.Background(), o.ID, ActionInProgress)
	require.NoError(t, err)

	assert.Equal(t, OutcomeAlreadySet, outcome)
	assert.Len(t, repo.updates, 1)
	assert.Len(t, ch.edits, 1)
}

func TestApplyStatusesInAnyOrder(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(repo, newFakeChannel())

	o, err := s.Publish(context.Background(), sampleSubmission())
	require.NoError(t, err)

	for _, action := range []Action{ActionDone, ActionInProgress, ActionDone} {
		outcome, err := s.Apply(context.Background(), o.ID, action)
		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, outcome)
	}
	assert.Equal(t, StatusDone, repo.orders[o.ID].Status)
	assert.Len(t, repo.updates, 3)
}

func TestApplyEditFailureLeavesStorageUntouched(t *testing.T) {
	repo := newFakeRepo()
	ch := newFakeChannel()
	s := newTestService(repo, ch)

	o, err := s.Publish(context.Background(), sampleSubmission())
	require.NoError(t, err)

	ch.failEdit = errors.New("message to edit not found")
	_, err = s.Apply(context.Background(), o.ID, ActionDone)
	require.Error(t, err)

	assert.Equal(t, StatusNew, repo.orders[o.ID].Status)
	assert.Empty(t, repo.updates)
}

func TestApplyUnknownOrderFailsGracefully(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(repo, newFakeChannel())

	_, err := s.Apply(context.Background(), "missing", ActionDone)
	assert.ErrorIs(t, err, ErrCardNotFound)
	assert.Empty(t, repo.updates)
	assert.Empty(t, repo.orders)
}

func TestApplyUnknownAction(t *testing.T) {
	s := newTestService(newFakeRepo(), newFakeChannel())
	_, err := s.Apply(context.Background(), "any", Action("explode"))
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestDeleteRemovesCardAndAttachments(t *testing.T) {
	repo := newFakeRepo()
	ch := newFakeChannel()
	s := newTestService(repo, ch)

	sub := sampleSubmission()
	sub.Attachments = []media.Item{
		{Kind: media.KindPhoto, FileID: "p1"},
		{Kind: media.KindPhoto, FileID: "p2"},
	}
	o, err := s.Publish(context.Background(), sub)
	require.NoError(t, err)

	outcome, err := s.Apply(context.Background(), o.ID, ActionDelete)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, outcome)

	// Two album messages and the card itself.
	assert.ElementsMatch(t, []int{1, 2, 3}, ch.deleted)
	assert.Equal(t, StatusDeleted, repo.orders[o.ID].Status)
	require.Len(t, repo.updates, 1)
	assert.Equal(t, StatusDeleted, repo.updates[0].Kind)

	// No further action can target the deleted card.
	_, err = s.Apply(context.Background(), o.ID, ActionDone)
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestDeleteMediaFailuresAreBestEffort(t *testing.T) {
	repo := newFakeRepo()
	ch := newFakeChannel()
	s := newTestService(repo, ch)

	sub := sampleSubmission()
	sub.Attachments = []media.Item{
		{Kind: media.KindPhoto, FileID: "p1"},
		{Kind: media.KindPhoto, FileID: "p2"},
	}
	o, err := s.Publish(context.Background(), sub)
	require.NoError(t, err)

	ch.failDelete[1] = errors.New("message already deleted")

	outcome, err := s.Apply(context.Background(), o.ID, ActionDelete)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, outcome)
	assert.ElementsMatch(t, []int{2, 3}, ch.deleted)
	assert.Equal(t, StatusDeleted, repo.orders[o.ID].Status)
}

func TestApplyStorageFailureAbortsTransition(t *testing.T) {
	repo := newFakeRepo()
	ch := newFakeChannel()
	s := newTestService(repo, ch)

	o, err := s.Publish(context.Background(), sampleSubmission())
	require.NoError(t, err)

	repo.failSet = errors.New("connection reset")
	_, err = s.Apply(context.Background(), o.ID, ActionDone)
	require.Error(t, err)
	assert.Empty(t, repo.updates)
}

func TestHistoryReturnsPerOrderTrail(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(repo, newFakeChannel())

	first, err := s.Publish(context.Background(), sampleSubmission())
	require.NoError(t, err)
	second, err := s.Publish(context.Background(), sampleSubmission())
	require.NoError(t, err)

	_, err = s.Apply(context.Background(), first.ID, ActionInProgress)
	require.NoError(t, err)
	_, err = s.Apply(context.Background(), second.ID, ActionDone)
	require.NoError(t, err)
	_, err = s.Apply(context.Background(), first.ID, ActionDone)
	require.NoError(t, err)

	trail, err := s.History(context.Background(), first.ID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, StatusInProgress, trail[0].Kind)
	assert.Equal(t, StatusDone, trail[1].Kind)
}
