package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteSnapshotter(t *testing.T) *SQLiteSnapshotter {
	t.Helper()
	s, err := NewSQLiteSnapshotter(filepath.Join(t.TempDir(), "snap.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteSnapshotter_EmptyLoad(t *testing.T) {
	s := newSQLiteSnapshotter(t)

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Users)
	assert.Empty(t, snap.History)
}

func TestSQLiteSnapshotter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteSnapshotter(t)
	want := sampleSnapshot()

	require.NoError(t, s.Save(ctx, want))
	got, err := s.Load(ctx)
	require.NoError(t, err)

	assert.ElementsMatch(t, want.Users, got.Users)
	assert.Equal(t, want.History, got.History)
}

func TestSQLiteSnapshotter_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteSnapshotter(t)
	require.NoError(t, s.Save(ctx, sampleSnapshot()))

	next := Snapshot{
		Users:   []User{{ID: "u3", Username: "c"}},
		History: map[string][]ChatMessage{"u3": {{Topic: "only"}}},
	}
	require.NoError(t, s.Save(ctx, next))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, next.Users, got.Users)
	assert.Equal(t, next.History, got.History)
}
