// Package store mirrors the in-memory conversation caches into Postgres.
// The mirror is strictly secondary: writes are issued asynchronously by the
// callers and failures never affect dispatch; the read path only warms a
// cold conversation key after a restart.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskbotai/larkgw/internal/config"
	"github.com/deskbotai/larkgw/internal/history"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS conversation_history (
		id BIGSERIAL PRIMARY KEY,
		chat_id VARCHAR(255) NOT NULL,
		role VARCHAR(50) NOT NULL,
		content TEXT NOT NULL,
		ts BIGINT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_conversation_chat_id ON conversation_history(chat_id)`,
	`CREATE INDEX IF NOT EXISTS idx_conversation_ts ON conversation_history(ts)`,
	`CREATE TABLE IF NOT EXISTS file_cache (
		id BIGSERIAL PRIMARY KEY,
		chat_id VARCHAR(255) NOT NULL,
		message_id VARCHAR(255) NOT NULL,
		file_type VARCHAR(100) NOT NULL,
		file_name TEXT NOT NULL,
		sender_id VARCHAR(255),
		observed_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_file_cache_chat_id ON file_cache(chat_id)`,
	`CREATE INDEX IF NOT EXISTS idx_file_cache_observed_at ON file_cache(observed_at)`,
	`CREATE TABLE IF NOT EXISTS document_cache (
		id BIGSERIAL PRIMARY KEY,
		chat_id VARCHAR(255) NOT NULL,
		doc_id VARCHAR(255) NOT NULL,
		doc_title VARCHAR(500),
		summary TEXT,
		accessed_count INT DEFAULT 1,
		last_accessed TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(chat_id, doc_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_document_cache_chat_id ON document_cache(chat_id)`,
}

// Mirror is the Postgres persistence layer.
type Mirror struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open connects to Postgres and applies the schema. The three tables are
// small and append-mostly; idempotent DDL at startup replaces a migration
// toolchain.
func Open(ctx context.Context, log *slog.Logger, cfg config.PostgresConfig) (*Mirror, error) {
	if log == nil {
		log = slog.Default()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolCfg.MaxConns = 20
	poolCfg.MaxConnIdleTime = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	m := &Mirror{pool: pool, logger: log.With(slog.String("service", "store"))}
	if err := m.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	m.logger.Info("postgres mirror ready")
	return m, nil
}

// Close releases the connection pool.
func (m *Mirror) Close() {
	m.pool.Close()
}

func (m *Mirror) ensureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := m.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// SaveTurn appends one transcript turn.
func (m *Mirror) SaveTurn(ctx context.Context, key, role, text string) error {
	_, err := m.pool.Exec(ctx,
		`INSERT INTO conversation_history (chat_id, role, content, ts) VALUES ($1, $2, $3, $4)`,
		key, role, text, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return nil
}

// RecentTurns returns the newest limit turns for key in chronological order,
// used to warm a cold in-memory transcript.
func (m *Mirror) RecentTurns(ctx context.Context, key string, limit int) ([]history.Turn, error) {
	rows, err := m.pool.Query(ctx,
		`SELECT role, content FROM conversation_history WHERE chat_id = $1 ORDER BY ts DESC LIMIT $2`,
		key, limit)
	if err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}
	defer rows.Close()

	var turns []history.Turn
	for rows.Next() {
		var t history.Turn
		if err := rows.Scan(&t.Role, &t.Text); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}

	// The query returns newest first; the transcript wants oldest first.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// ClearTurns drops the transcript for key.
func (m *Mirror) ClearTurns(ctx context.Context, key string) error {
	if _, err := m.pool.Exec(ctx, `DELETE FROM conversation_history WHERE chat_id = $1`, key); err != nil {
		return fmt.Errorf("clear turns: %w", err)
	}
	return nil
}

// SaveFile appends one file cache entry.
func (m *Mirror) SaveFile(ctx context.Context, key string, entry history.FileEntry) error {
	_, err := m.pool.Exec(ctx,
		`INSERT INTO file_cache (chat_id, message_id, file_type, file_name, sender_id, observed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		key, entry.MessageID, entry.Type, entry.Name, entry.Sender, entry.ObservedAt)
	if err != nil {
		return fmt.Errorf("save file entry: %w", err)
	}
	return nil
}

// RecentFiles returns the newest limit file entries for key, newest first.
func (m *Mirror) RecentFiles(ctx context.Context, key string, limit int) ([]history.FileEntry, error) {
	rows, err := m.pool.Query(ctx,
		`SELECT message_id, file_type, file_name, COALESCE(sender_id, ''), observed_at
		 FROM file_cache WHERE chat_id = $1 ORDER BY observed_at DESC LIMIT $2`,
		key, limit)
	if err != nil {
		return nil, fmt.Errorf("load file entries: %w", err)
	}
	defer rows.Close()

	var entries []history.FileEntry
	for rows.Next() {
		var e history.FileEntry
		if err := rows.Scan(&e.MessageID, &e.Type, &e.Name, &e.Sender, &e.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan file entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load file entries: %w", err)
	}
	return entries, nil
}

// SaveDocument upserts a document cache entry, bumping the access counter on
// repeat analyses of the same document.
func (m *Mirror) SaveDocument(ctx context.Context, key string, entry history.DocumentEntry) error {
	_, err := m.pool.Exec(ctx,
		`INSERT INTO document_cache (chat_id, doc_id, doc_title, summary, last_accessed)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (chat_id, doc_id)
		 DO UPDATE SET
			doc_title = EXCLUDED.doc_title,
			summary = EXCLUDED.summary,
			accessed_count = document_cache.accessed_count + 1,
			last_accessed = EXCLUDED.last_accessed`,
		key, entry.DocID, entry.Title, entry.Summary, entry.LastTouched)
	if err != nil {
		return fmt.Errorf("save document entry: %w", err)
	}
	return nil
}
