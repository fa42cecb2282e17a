package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"interview-session-service/internal/domain"
)

// SnapshotStore persists the interview state as one JSONB row per workspace.
type SnapshotStore struct {
	pool      *pgxpool.Pool
	workspace string
}

func NewSnapshotStore(pool *pgxpool.Pool, workspace string) *SnapshotStore {
	return &SnapshotStore{pool: pool, workspace: workspace}
}

func (s *SnapshotStore) Load(ctx context.Context) (domain.State, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM interview_snapshots WHERE workspace=$1`, s.workspace).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
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
	_, err = s.pool.Exec(ctx,
		`INSERT INTO interview_snapshots (workspace, data, updated_at) VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (workspace) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		s.workspace, string(raw))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
