package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createMessagesTable = `
	CREATE TABLE IF NOT EXISTS messages (
		channel_id BIGINT,
		channel_type SMALLINT,
		channel_name TEXT,
		guild_id BIGINT,
		guild_name TEXT,
		recipients BIGINT[],
		id BIGINT PRIMARY KEY,
		date TIMESTAMP WITHOUT TIME ZONE,
		content TEXT
	)`

const insertMessage = `
	INSERT INTO messages (
		channel_id, channel_type, channel_name,
		guild_id, guild_name,
		recipients,
		id, date, content
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

var onConflict = map[ConflictPolicy]string{
	ConflictUpdateName: ` ON CONFLICT (id) DO UPDATE SET channel_name = EXCLUDED.channel_name`,
	ConflictIgnore:     ` ON CONFLICT (id) DO NOTHING`,
}

// Postgres writes messages through a single pooled connection.
type Postgres struct {
	pool   *pgxpool.Pool
	upsert string
}

// NewPostgres connects to databaseURL and verifies the connection.
func NewPostgres(ctx context.Context, databaseURL string, policy ConflictPolicy) (*Postgres, error) {
	suffix, ok := onConflict[policy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConflictPolicy, policy)
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{pool: pool, upsert: insertMessage + suffix}, nil
}

func (s *Postgres) Close() {
	s.pool.Close()
}

func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createMessagesTable); err != nil {
		return fmt.Errorf("create messages table: %w", err)
	}
	return nil
}

func (s *Postgres) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &pgTx{tx: tx, upsert: s.upsert}, nil
}

func (s *Postgres) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

type pgTx struct {
	tx     pgx.Tx
	upsert string
}

func (t *pgTx) Upsert(ctx context.Context, m MessageRow) error {
	// A nil slice must reach the server as NULL, not '{}'.
	var recipients any
	if m.Recipients != nil {
		recipients = m.Recipients
	}

	_, err := t.tx.Exec(ctx, t.upsert,
		m.ChannelID, m.ChannelType, m.ChannelName,
		m.GuildID, m.GuildName,
		recipients,
		m.ID, m.Date, m.Content,
	)
	if err != nil {
		return fmt.Errorf("upsert message %d: %w", m.ID, err)
	}
	return nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *pgTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
