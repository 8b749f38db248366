package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// FileSnapshotter writes users and history to two indented JSON files.
// Each Save truncates and rewrites both files; a crash mid-write can leave
// either file partially written.
type FileSnapshotter struct {
	usersPath   string
	historyPath string
}

func NewFileSnapshotter(usersPath, historyPath string) (*FileSnapshotter, error) {
	for _, p := range []string{usersPath, historyPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, fmt.Errorf("failed to ensure dir for %s: %w", p, err)
		}
	}
	return &FileSnapshotter{usersPath: usersPath, historyPath: historyPath}, nil
}

// Load reads both files. A missing file counts as empty; malformed content is an error.
func (f *FileSnapshotter) Load(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Users: []User{}, History: map[string][]ChatMessage{}}

	if err := readJSON(f.usersPath, &snap.Users); err != nil {
		return Snapshot{}, fmt.Errorf("failed to load users: %w", err)
	}
	if err := readJSON(f.historyPath, &snap.History); err != nil {
		return Snapshot{}, fmt.Errorf("failed to load history: %w", err)
	}
	if snap.Users == nil {
		snap.Users = []User{}
	}
	if snap.History == nil {
		snap.History = map[string][]ChatMessage{}
	}
	return snap, nil
}

func (f *FileSnapshotter) Save(ctx context.Context, snap Snapshot) error {
	users := snap.Users
	if users == nil {
		users = []User{}
	}
	history := snap.History
	if history == nil {
		history = map[string][]ChatMessage{}
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := writeJSON(f.usersPath, users); err != nil {
			return fmt.Errorf("failed to save users: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := writeJSON(f.historyPath, history); err != nil {
			return fmt.Errorf("failed to save history: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (f *FileSnapshotter) Close() error { return nil }

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
