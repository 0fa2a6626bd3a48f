package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/scorekeeper/internal/dependencies/clock"
	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/storage"
)

// Storage is a Redis-backed ledger. The document lives under a single key, so
// each save is one atomic SET.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis ledger and verifies the connection
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis ledger with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultConfig().Namespace
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Ledger = (*Storage)(nil)

func (s *Storage) Load(ctx context.Context) (model.RawDocument, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data, err := s.client.Get(ctx, ledgerKey(s.cfg.Namespace)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.RawDocument{}, nil
		}
		return nil, storage.IOError("redis get", err)
	}
	return storage.DecodeDocument(data)
}

func (s *Storage) Save(ctx context.Context, doc model.LedgerDocument) error {
	data, err := storage.EncodeDocument(doc)
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// MULTI/EXEC so the document and its metadata move together
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, ledgerKey(s.cfg.Namespace), data, 0)
	pipe.HSet(ctx, ledgerMetaKey(s.cfg.Namespace),
		"users", len(doc),
		"bytes", len(data),
		"saved_at", s.cfg.Clock.Now().UTC().Format(time.RFC3339Nano),
	)
	if _, err := pipe.Exec(ctx); err != nil {
		return storage.IOError("redis save", err)
	}
	return nil
}

func (s *Storage) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}
