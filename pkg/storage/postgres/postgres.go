// Package postgres provides a PostgreSQL-backed conversation store. It
// uses pgx/v5 connection pooling and JSONB for the message log.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plauder-dev/plauder/pkg/api"
	"github.com/plauder-dev/plauder/pkg/storage"
)

// Store is a PostgreSQL-backed ConversationStore.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.ConversationStore = (*Store)(nil)

// New creates a store from the given configuration. When
// MigrateOnStart is set, pending schema migrations run before the
// store is returned.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Save upserts a conversation. Insert sets created_at; updates only
// touch the mutable columns.
func (s *Store) Save(ctx context.Context, rec *storage.Record) error {
	messagesJSON, err := json.Marshal(rec.Messages)
	if err != nil {
		return fmt.Errorf("marshaling messages: %w", err)
	}

	now := time.Now().UTC()
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO conversations (id, title, model, messages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title      = EXCLUDED.title,
			model      = EXCLUDED.model,
			messages   = EXCLUDED.messages,
			updated_at = EXCLUDED.updated_at
	`,
		rec.ID, rec.Title, rec.Model, messagesJSON, createdAt, now,
	)
	if err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}
	return nil
}

// Get retrieves a conversation by ID.
func (s *Store) Get(ctx context.Context, id string) (*storage.Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, title, model, messages, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying conversation: %w", err)
	}
	return rec, nil
}

// Delete removes a conversation.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List returns conversations newest-updated first with cursor
// pagination.
func (s *Store) List(ctx context.Context, opts storage.ListOptions) ([]*storage.Record, error) {
	limit := opts.EffectiveLimit()

	var rows pgx.Rows
	var err error
	if opts.After != "" {
		rows, err = s.pool.Query(ctx, `
			SELECT id, title, model, messages, created_at, updated_at
			FROM conversations
			WHERE (updated_at, id) < (
				SELECT updated_at, id FROM conversations WHERE id = $1
			)
			ORDER BY updated_at DESC, id DESC
			LIMIT $2
		`, opts.After, limit)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT id, title, model, messages, created_at, updated_at
			FROM conversations
			ORDER BY updated_at DESC, id DESC
			LIMIT $1
		`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	var recs []*storage.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	return recs, nil
}

// HealthCheck verifies database connectivity.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// scanRecord reads one conversation row.
func scanRecord(row pgx.Row) (*storage.Record, error) {
	var rec storage.Record
	var messagesJSON []byte

	if err := row.Scan(&rec.ID, &rec.Title, &rec.Model, &messagesJSON, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if len(messagesJSON) > 0 {
		if err := json.Unmarshal(messagesJSON, &rec.Messages); err != nil {
			return nil, fmt.Errorf("unmarshaling messages: %w", err)
		}
	}
	if rec.Messages == nil {
		rec.Messages = []api.Message{}
	}
	return &rec, nil
}
