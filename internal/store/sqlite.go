package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteSnapshotter keeps the snapshot in a SQLite database. Save replaces the
// contents of both tables in a single transaction.
type SQLiteSnapshotter struct {
	db *sql.DB
}

func NewSQLiteSnapshotter(dataSourceName string) (*SQLiteSnapshotter, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteSnapshotter{db: db}
	if err = s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteSnapshotter) Close() error {
	return s.db.Close()
}

func (s *SQLiteSnapshotter) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY, -- UUID
        name TEXT NOT NULL,
        username TEXT NOT NULL,
        password TEXT NOT NULL,
        total_sessions INTEGER NOT NULL DEFAULT 0,
        mastered_cards INTEGER NOT NULL DEFAULT 0,
        created_at INTEGER NOT NULL -- unix millis
    );

    CREATE TABLE IF NOT EXISTS messages (
        user_id TEXT NOT NULL,
        seq INTEGER NOT NULL, -- position within the user's history
        role TEXT NOT NULL,
        content TEXT NOT NULL,
        mode TEXT NOT NULL,
        topic TEXT NOT NULL,
        timestamp INTEGER NOT NULL, -- unix millis
        ok BOOLEAN NOT NULL DEFAULT FALSE,
        PRIMARY KEY (user_id, seq)
    );

    -- Users with an empty history still need a row to be restored.
    CREATE TABLE IF NOT EXISTS histories (
        user_id TEXT PRIMARY KEY
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteSnapshotter) Save(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"users", "messages", "histories"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	userStmt, err := tx.PrepareContext(ctx, "INSERT INTO users (id, name, username, password, total_sessions, mastered_cards, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare user insert: %w", err)
	}
	defer userStmt.Close()

	for _, u := range snap.Users {
		if _, err := userStmt.ExecContext(ctx, u.ID, u.Name, u.Username, u.Password, u.TotalSessions, u.MasteredCards, u.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert user %s: %w", u.ID, err)
		}
	}

	histStmt, err := tx.PrepareContext(ctx, "INSERT INTO histories (user_id) VALUES (?)")
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer histStmt.Close()

	msgStmt, err := tx.PrepareContext(ctx, "INSERT INTO messages (user_id, seq, role, content, mode, topic, timestamp, ok) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer msgStmt.Close()

	for userID, msgs := range snap.History {
		if _, err := histStmt.ExecContext(ctx, userID); err != nil {
			return fmt.Errorf("failed to insert history for %s: %w", userID, err)
		}
		for i, m := range msgs {
			if _, err := msgStmt.ExecContext(ctx, userID, i, m.Role, m.Content, m.Mode, m.Topic, m.Timestamp, m.OK); err != nil {
				return fmt.Errorf("failed to insert message %d for %s: %w", i, userID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteSnapshotter) Load(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Users: []User{}, History: map[string][]ChatMessage{}}

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, username, password, total_sessions, mastered_cards, created_at FROM users")
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to query users: %w", err)
	}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Username, &u.Password, &u.TotalSessions, &u.MasteredCards, &u.CreatedAt); err != nil {
			rows.Close()
			return Snapshot{}, fmt.Errorf("failed to scan user row: %w", err)
		}
		snap.Users = append(snap.Users, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("failed to read users: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, "SELECT user_id FROM histories")
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to query histories: %w", err)
	}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			rows.Close()
			return Snapshot{}, fmt.Errorf("failed to scan history row: %w", err)
		}
		snap.History[userID] = []ChatMessage{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("failed to read histories: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, "SELECT user_id, role, content, mode, topic, timestamp, ok FROM messages ORDER BY user_id, seq ASC")
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var userID string
		var m ChatMessage
		if err := rows.Scan(&userID, &m.Role, &m.Content, &m.Mode, &m.Topic, &m.Timestamp, &m.OK); err != nil {
			return Snapshot{}, fmt.Errorf("failed to scan message row: %w", err)
		}
		snap.History[userID] = append(snap.History[userID], m)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("failed to read messages: %w", err)
	}
	return snap, nil
}
