package storage

import "github.com/xaenox/dank-times-bot/internal/chat"

// Storage persists the full chat collection as plain snapshots and restores
// it at startup. Random dank times are never part of a snapshot.
type Storage interface {
	LoadChats() ([]chat.Snapshot, error)
	SaveChats(snapshots []chat.Snapshot) error
	Close() error
}
