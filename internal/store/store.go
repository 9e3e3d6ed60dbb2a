package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownConflictPolicy is returned by ParseConflictPolicy for unrecognised values.
var ErrUnknownConflictPolicy = errors.New("unknown conflict policy")

// ConflictPolicy decides what happens when a message ID is already stored.
type ConflictPolicy string

const (
	// ConflictUpdateName refreshes channel_name and keeps every other column.
	ConflictUpdateName ConflictPolicy = "update-name"
	// ConflictIgnore keeps the existing row untouched.
	ConflictIgnore ConflictPolicy = "ignore"
)

// ParseConflictPolicy reads a DPE_ON_CONFLICT value; empty means update-name.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ConflictUpdateName:
		return ConflictUpdateName, nil
	case ConflictIgnore:
		return ConflictIgnore, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownConflictPolicy, s)
}

// Store is a destination for exported messages.
type Store interface {
	// EnsureSchema creates the messages table if it does not exist. An existing
	// table is left as it is.
	EnsureSchema(ctx context.Context) error
	Begin(ctx context.Context) (Tx, error)
	// Count returns the number of stored messages.
	Count(ctx context.Context) (int64, error)
	Close()
}

// Tx batches the upserts of one channel.
type Tx interface {
	Upsert(ctx context.Context, m MessageRow) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Open connects to the database named by dsn. SQLite is used for "sqlite:"
// DSNs and for paths ending in .db, .sqlite or .sqlite3; anything else is
// handed to Postgres.
func Open(ctx context.Context, dsn string, policy ConflictPolicy) (Store, error) {
	if path, ok := sqlitePath(dsn); ok {
		s, err := NewSQLite(path, policy)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := NewPostgres(ctx, dsn, policy)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func sqlitePath(dsn string) (string, bool) {
	for _, prefix := range []string{"sqlite://", "sqlite:"} {
		if strings.HasPrefix(dsn, prefix) {
			return strings.TrimPrefix(dsn, prefix), true
		}
	}
	switch strings.ToLower(filepath.Ext(dsn)) {
	case ".db", ".sqlite", ".sqlite3":
		if !strings.Contains(dsn, "://") {
			return dsn, true
		}
	}
	return "", false
}
