package storage

import (
	"sync"

	"github.com/xaenox/dank-times-bot/internal/chat"
)

// MemoryStorage keeps snapshots in memory only. Useful for tests and for
// running the bot without a database.
type MemoryStorage struct {
	mu    sync.RWMutex
	chats map[int64]chat.Snapshot
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		chats: make(map[int64]chat.Snapshot),
	}
}

func (s *MemoryStorage) LoadChats() ([]chat.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots := make([]chat.Snapshot, 0, len(s.chats))
	for _, snapshot := range s.chats {
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func (s *MemoryStorage) SaveChats(snapshots []chat.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chats = make(map[int64]chat.Snapshot, len(snapshots))
	for _, snapshot := range snapshots {
		s.chats[snapshot.ID] = snapshot
	}
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
