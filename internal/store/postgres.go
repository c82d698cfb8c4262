package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/battlesync/battlesync-server/internal/config"
	"github.com/battlesync/battlesync-server/internal/engine"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id            TEXT PRIMARY KEY,
	doc           JSONB NOT NULL,
	match_version BIGINT NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres stores match documents in a single JSONB table.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewDB opens the connection pool and verifies connectivity.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connection pool initialized",
		zap.Int32("max_conns", poolCfg.MaxConns),
		zap.Int32("min_conns", poolCfg.MinConns),
	)
	return pool, nil
}

// NewPostgres wraps a pool as a match store and ensures the schema.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) (*Postgres, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("ensure matches schema: %w", err)
	}
	return &Postgres{pool: pool, logger: logger}, nil
}

func (p *Postgres) Create(ctx context.Context, m *engine.MatchState) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal match %s: %w", m.ID, err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO matches (id, doc, match_version) VALUES ($1, $2, $3)`,
		m.ID, doc, m.MatchVersion,
	)
	if err != nil {
		return fmt.Errorf("insert match %s: %w", m.ID, err)
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context, id string) (*engine.MatchState, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx,
		`SELECT doc FROM matches WHERE id = $1`, id,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load match %s: %w", id, err)
	}

	var m engine.MatchState
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("unmarshal match %s: %w", id, err)
	}
	return &m, nil
}

func (p *Postgres) Save(ctx context.Context, m *engine.MatchState, expectedVersion int64) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal match %s: %w", m.ID, err)
	}

	tag, err := p.pool.Exec(ctx,
		`UPDATE matches SET doc = $1, match_version = $2, updated_at = now()
		 WHERE id = $3 AND match_version = $4`,
		doc, m.MatchVersion, m.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("save match %s: %w", m.ID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := p.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM matches WHERE id = $1)`, m.ID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("save match %s: %w", m.ID, err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete match %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
