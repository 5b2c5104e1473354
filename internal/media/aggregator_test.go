package media

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectOnce(t *testing.T) (ResolveFunc, func(wait time.Duration) [][]Item) {
	t.Helper()
	var (
		mu      sync.Mutex
		batches [][]Item
	)
	resolve := func(items []Item) {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, items)
	}
	read := func(wait time.Duration) [][]Item {
		time.Sleep(wait)
		mu.Lock()
		defer mu.Unlock()
		out := make([][]Item, len(batches))
		copy(out, batches)
		return out
	}
	return resolve, read
}

func TestSubmitFlattensBurstInArrivalOrder(t *testing.T) {
	agg := NewAggregator(30 * time.Millisecond)
	resolve, read := collectOnce(t)

	agg.Submit("album-1", Item{Kind: KindPhoto, FileID: "p1"}, false, resolve)
	agg.Submit("album-1", Item{Kind: KindVideo, FileID: "v1"}, false, resolve)
	agg.Submit("album-1", Item{Kind: KindPhoto, FileID: "p2"}, false, resolve)

	batches := read(100 * time.Millisecond)
	require.Len(t, batches, 1)
	require.Equal(t, []Item{
		{Kind: KindPhoto, FileID: "p1"},
		{Kind: KindVideo, FileID: "v1"},
		{Kind: KindPhoto, FileID: "p2"},
	}, batches[0])
	assert.False(t, agg.Pending("album-1"))
}

func TestFinalHintResolvesSynchronously(t *testing.T) {
	agg := NewAggregator(time.Hour)
	resolve, read := collectOnce(t)

	agg.Submit("album-2", Item{Kind: KindPhoto, FileID: "p1"}, false, resolve)
	agg.Submit("album-2", Item{Kind: KindPhoto, FileID: "p2"}, true, resolve)

	// No waiting: the final hint must not depend on the window.
	batches := read(0)
	require.Len(t, batches, 1)
	assert.Equal(t, []Item{
		{Kind: KindPhoto, FileID: "p1"},
		{Kind: KindPhoto, FileID: "p2"},
	}, batches[0])
	assert.False(t, agg.Pending("album-2"))
}

func TestResolveFiresExactlyOnce(t *testing.T) {
	agg := NewAggregator(20 * time.Millisecond)
	resolve, read := collectOnce(t)

	agg.Submit("album-3", Item{Kind: KindPhoto, FileID: "p1"}, false, resolve)
	agg.Submit("album-3", Item{Kind: KindPhoto, FileID: "p2"}, true, resolve)

	// The disarmed timer must not deliver the batch again.
	batches := read(80 * time.Millisecond)
	assert.Len(t, batches, 1)
}

func TestKeysAreIndependent(t *testing.T) {
	agg := NewAggregator(30 * time.Millisecond)
	resolveA, readA := collectOnce(t)
	resolveB, readB := collectOnce(t)

	agg.Submit("a", Item{Kind: KindPhoto, FileID: "a1"}, false, resolveA)
	agg.Submit("b", Item{Kind: KindVideo, FileID: "b1"}, false, resolveB)
	agg.Submit("a", Item{Kind: KindPhoto, FileID: "a2"}, false, resolveA)

	batchesA := readA(100 * time.Millisecond)
	batchesB := readB(0)
	require.Len(t, batchesA, 1)
	require.Len(t, batchesB, 1)
	assert.Len(t, batchesA[0], 2)
	assert.Len(t, batchesB[0], 1)
}

func TestDiscardDropsPendingBatch(t *testing.T) {
	agg := NewAggregator(20 * time.Millisecond)
	resolve, read := collectOnce(t)

	agg.Submit("album-4", Item{Kind: KindPhoto, FileID: "p1"}, false, resolve)
	agg.Discard("album-4")

	batches := read(80 * time.Millisecond)
	assert.Empty(t, batches)
	assert.False(t, agg.Pending("album-4"))
}

func TestLateArrivalExtendsWindow(t *testing.T) {
	agg := NewAggregator(50 * time.Millisecond)
	resolve, read := collectOnce(t)

	agg.Submit("album-5", Item{Kind: KindPhoto, FileID: "p1"}, false, resolve)
	time.Sleep(30 * time.Millisecond)
	agg.Submit("album-5", Item{Kind: KindPhoto, FileID: "p2"}, false, resolve)

	// 30ms after the second arrival the original deadline has passed,
	// but the rearmed timer has not.
	assert.Empty(t, read(30*time.Millisecond))
	batches := read(60 * time.Millisecond)
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 2)
}
