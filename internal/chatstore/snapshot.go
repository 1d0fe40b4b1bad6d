package chatstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Snapshot is the slice of store state that survives a restart. Session
// content never does; it is re-fetched from the document store.
type Snapshot struct {
	CurrentSessionID string `json:"current_session_id"`
	CurrentUserID    string `json:"current_user_id"`
}

// SnapshotStore persists a Snapshot. Load returns (nil, nil) when nothing was
// saved yet.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}

const snapshotTTL = 30 * 24 * time.Hour

// RedisSnapshotStore keeps one user's snapshot under a fixed key.
type RedisSnapshotStore struct {
	client *redis.Client
	key    string
}

func NewRedisSnapshotStore(client *redis.Client, userID string) *RedisSnapshotStore {
	return &RedisSnapshotStore{
		client: client,
		key:    "chatstore:snapshot:" + userID,
	}
}

func (r *RedisSnapshotStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, data, snapshotTTL).Err()
}

func (r *RedisSnapshotStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
