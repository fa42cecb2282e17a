package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"interview-session-service/internal/domain"
)

// SnapshotStore keeps the interview state as one JSON value per workspace:
//
//	SET interview:snapshot:{workspace} <state json> [EX ttl]
//
// A zero TTL keeps the key until it is overwritten.
type SnapshotStore struct {
	client    *redis.Client
	workspace string
	ttl       time.Duration
}

func NewSnapshotStore(client *redis.Client, workspace string, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, workspace: workspace, ttl: ttl}
}

func (s *SnapshotStore) Load(ctx context.Context) (domain.State, error) {
	raw, err := s.client.Get(ctx, s.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.State{}, nil
	}
	if err != nil {
		return domain.State{}, fmt.Errorf("load snapshot: %w", err)
	}
	var st domain.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return domain.State{}, fmt.Errorf("%w: %v", domain.ErrCorruptSnapshot, err)
	}
	return st, nil
}

func (s *SnapshotStore) Save(ctx context.Context, st domain.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key(), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) key() string {
	return "interview:snapshot:" + s.workspace
}
