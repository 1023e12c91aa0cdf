package chat

import (
	"sync"

	"go.uber.org/zap"
)

// Registry is the global chat collection, keyed by chat id. Chats are
// created lazily on first contact.
type Registry struct {
	mu     sync.Mutex
	chats  map[int64]*Chat
	logger *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		chats:  make(map[int64]*Chat),
		logger: logger,
	}
}

func (r *Registry) GetOrCreate(id int64) *Chat {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.chats[id]; ok {
		return c
	}
	c := New(id)
	r.chats[id] = c
	r.logger.Info("created new chat", zap.Int64("chat_id", id))
	return c
}

func (r *Registry) Get(id int64) (*Chat, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[id]
	return c, ok
}

func (r *Registry) Remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.chats, id)
}

// MigrateChatID re-keys a chat after a Telegram group migration. A missing
// source chat is a no-op.
func (r *Registry) MigrateChatID(oldID, newID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[oldID]
	if !ok {
		return
	}
	delete(r.chats, oldID)
	c.mu.Lock()
	c.id = newID
	c.mu.Unlock()
	r.chats[newID] = c
	r.logger.Info("migrated chat",
		zap.Int64("old_chat_id", oldID),
		zap.Int64("new_chat_id", newID))
}

// All returns the current chats.
func (r *Registry) All() []*Chat {
	r.mu.Lock()
	defer r.mu.Unlock()
	chats := make([]*Chat, 0, len(r.chats))
	for _, c := range r.chats {
		chats = append(chats, c)
	}
	return chats
}

// Snapshots captures every chat's persistent state.
func (r *Registry) Snapshots() []Snapshot {
	snapshots := make([]Snapshot, 0)
	for _, c := range r.All() {
		snapshots = append(snapshots, c.Snapshot())
	}
	return snapshots
}

// Restore rebuilds the registry from persisted snapshots.
func (r *Registry) Restore(snapshots []Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, snapshot := range snapshots {
		c, err := FromSnapshot(snapshot)
		if err != nil {
			return err
		}
		r.chats[snapshot.ID] = c
	}
	return nil
}
