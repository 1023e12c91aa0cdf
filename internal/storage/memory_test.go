package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/dank-times-bot/internal/chat"
)

func TestMemoryStorageRoundTrip(t *testing.T) {
	store := NewMemoryStorage()

	snapshots := []chat.Snapshot{
		{ID: 1, LastHour: 13, LastMinute: 37},
		{ID: 2, LastHour: -1, LastMinute: -1},
	}
	require.NoError(t, store.SaveChats(snapshots))

	loaded, err := store.LoadChats()
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestMemoryStorageSaveReplacesEverything(t *testing.T) {
	store := NewMemoryStorage()
	require.NoError(t, store.SaveChats([]chat.Snapshot{{ID: 1}, {ID: 2}}))

	// A removed chat must not resurface on the next load.
	require.NoError(t, store.SaveChats([]chat.Snapshot{{ID: 2}}))

	loaded, err := store.LoadChats()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, int64(2), loaded[0].ID)
}

func TestMemoryStorageLoadEmpty(t *testing.T) {
	store := NewMemoryStorage()
	loaded, err := store.LoadChats()
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.NoError(t, store.Close())
}
