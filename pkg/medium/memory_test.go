package medium

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *recorder) record(c Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder) all() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Change(nil), r.changes...)
}

func TestTab_GetSetRemove(t *testing.T) {
	tab := NewShared().Tab()

	_, err := tab.Get("k")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, tab.Set("k", "v1"))
	got, err := tab.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v1", got)

	require.NoError(t, tab.Remove("k"))
	_, err = tab.Get("k")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.ErrorIs(t, tab.Set("", "x"), ErrEmptyKey)
}

func TestTab_ChangesSkipWriter(t *testing.T) {
	shared := NewShared()
	writer, reader := shared.Tab(), shared.Tab()

	var mine, theirs recorder
	cancelMine, err := writer.Watch(mine.record)
	require.NoError(t, err)
	defer cancelMine()
	cancelTheirs, err := reader.Watch(theirs.record)
	require.NoError(t, err)
	defer cancelTheirs()

	require.NoError(t, writer.Set("k", "v1"))
	require.NoError(t, writer.Set("k", "v1")) // unchanged value fires nothing
	require.NoError(t, writer.Set("k", "v2"))
	require.NoError(t, writer.Remove("k"))

	assert.Empty(t, mine.all())
	assert.Equal(t, []Change{
		{Key: "k", NewValue: "v1"},
		{Key: "k", OldValue: "v1", NewValue: "v2"},
		{Key: "k", OldValue: "v2", Removed: true},
	}, theirs.all())
}

func TestTab_ClearWipesEverything(t *testing.T) {
	shared := NewShared()
	a, b := shared.Tab(), shared.Tab()
	require.NoError(t, a.Set("app_x", "1"))
	require.NoError(t, a.Set("other_y", "2"))

	var seen recorder
	cancel, err := b.Watch(seen.record)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, a.Clear())

	keys, err := b.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Len(t, seen.all(), 2)
}

func TestTab_CancelAndClose(t *testing.T) {
	shared := NewShared()
	a, b := shared.Tab(), shared.Tab()

	var seen recorder
	cancel, err := b.Watch(seen.record)
	require.NoError(t, err)
	cancel()
	cancel() // idempotent

	require.NoError(t, a.Set("k", "v"))
	assert.Empty(t, seen.all())

	require.NoError(t, b.Close())
	_, err = b.Get("k")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = b.Watch(seen.record)
	assert.ErrorIs(t, err, ErrClosed)

	// Shared data survives a closed tab
	v, err := a.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestTab_ConcurrentWriters(t *testing.T) {
	shared := NewShared()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tab := shared.Tab()
			for j := 0; j < 50; j++ {
				_ = tab.Set("counter", "x")
				_, _ = tab.Get("counter")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, map[string]string{"counter": "x"}, shared.Snapshot())
}
