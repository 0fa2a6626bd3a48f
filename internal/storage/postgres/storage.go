package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/storage"
)

// Config holds Postgres ledger settings
type Config struct {
	// URL is the connection string (postgres://...)
	URL string
	// DocumentID selects the ledger row, so several ledgers can share a table
	DocumentID string

	MaxConns int32
	MinConns int32
}

// DefaultConfig returns default Postgres ledger settings
func DefaultConfig() Config {
	return Config{
		DocumentID: "default",
		MaxConns:   4,
		MinConns:   1,
	}
}

const schemaSQL = `
create table if not exists scorekeeper_ledger (
	id         text primary key,
	body       jsonb not null,
	updated_at timestamptz not null default now()
)`

// Storage is a Postgres-backed ledger. The document is one jsonb row replaced
// by a single upsert, which is atomic.
type Storage struct {
	pool *pgxpool.Pool
	cfg  Config
}

// New connects, verifies the connection and ensures the ledger table exists
func New(ctx context.Context, cfg Config) (*Storage, error) {
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
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := NewWithPool(pool, cfg)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewWithPool wraps an existing pool
func NewWithPool(pool *pgxpool.Pool, cfg Config) *Storage {
	if cfg.DocumentID == "" {
		cfg.DocumentID = DefaultConfig().DocumentID
	}
	return &Storage{pool: pool, cfg: cfg}
}

// EnsureSchema creates the ledger table if it does not exist
func (s *Storage) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create ledger table: %w", err)
	}
	return nil
}

// Ensure Storage implements the interface
var _ storage.Ledger = (*Storage)(nil)

func (s *Storage) Load(ctx context.Context) (model.RawDocument, error) {
	var body []byte
	err := s.pool.QueryRow(ctx,
		`select body from scorekeeper_ledger where id = $1`,
		s.cfg.DocumentID,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RawDocument{}, nil
		}
		return nil, storage.IOError("select ledger", err)
	}
	return storage.DecodeDocument(body)
}

func (s *Storage) Save(ctx context.Context, doc model.LedgerDocument) error {
	data, err := storage.EncodeDocument(doc)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		insert into scorekeeper_ledger (id, body, updated_at)
		values ($1, $2::jsonb, now())
		on conflict (id) do update set body = excluded.body, updated_at = excluded.updated_at`,
		s.cfg.DocumentID, string(data),
	)
	if err != nil {
		return storage.IOError("upsert ledger", err)
	}
	return nil
}

// Close releases the pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}
