package store

import "context"

// Snapshotter persists and restores the full state in one piece.
type Snapshotter interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Close() error
}
