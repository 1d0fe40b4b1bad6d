package chatstore

import (
	"context"
	"sync"
)

// SnapshotFactory builds the snapshot store for a user, or returns nil to
// disable snapshots.
type SnapshotFactory func(userID string) SnapshotStore

// Manager hands out one Store per authenticated user. Stores are created
// lazily on first access and kept for the life of the process; the document
// store is shared.
type Manager struct {
	docs      DocumentStore
	snapshots SnapshotFactory
	opts      []Option

	mu     sync.Mutex
	stores map[string]*Store
}

func NewManager(docs DocumentStore, snapshots SnapshotFactory, opts ...Option) *Manager {
	return &Manager{
		docs:      docs,
		snapshots: snapshots,
		opts:      opts,
		stores:    make(map[string]*Store),
	}
}

// ForUser returns the user's store, creating and restoring it on first use.
// The returned store already has its current user set.
func (m *Manager) ForUser(ctx context.Context, userID string) *Store {
	m.mu.Lock()
	store, ok := m.stores[userID]
	if ok {
		m.mu.Unlock()
		return store
	}

	opts := m.opts
	if m.snapshots != nil {
		if snap := m.snapshots(userID); snap != nil {
			opts = append(append([]Option{}, m.opts...), WithSnapshot(snap))
		}
	}
	store = New(m.docs, opts...)
	m.stores[userID] = store
	m.mu.Unlock()

	store.SetCurrentUserID(userID)
	// Best-effort: a missing or unreadable snapshot just means no remembered
	// current session.
	store.Restore(ctx)
	return store
}
