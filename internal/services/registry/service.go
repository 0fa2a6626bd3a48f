package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/mcoot/scorekeeper/internal/metrics"
	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/services/schema"
	"github.com/mcoot/scorekeeper/internal/storage"
)

// ErrNotLoaded is returned by operations called before Load
var ErrNotLoaded = errors.New("registry not loaded")

// Service is the in-memory authoritative set of user records. Every mutation
// is persisted to the ledger before it is acknowledged; a failed save rolls the
// mutation back.
type Service struct {
	ledger  storage.Ledger
	logger  *slog.Logger
	metrics *metrics.Metrics

	// mu serializes operations so each runs to completion, save included
	mu     sync.Mutex
	users  map[string]*model.UserRecord
	order  []string
	loaded bool
}

// New creates a registry backed by ledger. Call Load before use.
func New(ledger storage.Ledger, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		ledger:  ledger,
		logger:  logger,
		metrics: m,
		users:   make(map[string]*model.UserRecord),
	}
}

// Load reads the ledger, migrates every record to the current shape, and
// persists the result if any record changed
func (s *Service) Load(ctx context.Context) error {
	raw, err := s.ledger.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	// Load order is deterministic since the document itself is unordered
	slices.Sort(names)

	users := make(map[string]*model.UserRecord, len(raw))
	migrated := 0
	// Source schema version -> records upgraded from it
	fromVersions := make(map[int]int)
	for _, name := range names {
		if name == "" {
			return fmt.Errorf("%w: record with empty name", model.ErrIOFailure)
		}
		rec, changed, err := schema.Normalize(name, raw[name])
		if err != nil {
			return err
		}
		if changed {
			migrated++
			version, err := schema.Version(raw[name])
			if err != nil {
				return err
			}
			fromVersions[version]++
		}
		users[name] = &rec
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = users
	s.order = names
	s.loaded = true

	if migrated > 0 {
		s.logger.Info("migrating ledger records",
			slog.Int("records", migrated),
			slog.Any("from_versions", fromVersions),
			slog.Int("schema_version", schema.CurrentVersion),
			slog.Any("steps", schema.Steps()),
		)
		if err := s.save(ctx); err != nil {
			s.users, s.order, s.loaded = make(map[string]*model.UserRecord), nil, false
			return fmt.Errorf("persist migrated records: %w", err)
		}
		for version, n := range fromVersions {
			s.metrics.Migrated(version, n)
		}
	}

	s.metrics.SetUsers(len(s.users))
	s.logger.Info("registry loaded", slog.Int("users", len(s.users)))
	return nil
}

// Register creates a record for name, or returns the existing one after
// bringing it up to the current schema. Calling it again never resets scores.
func (s *Service) Register(ctx context.Context, name string) (model.UserRecord, error) {
	if name == "" {
		return model.UserRecord{}, model.ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return model.UserRecord{}, ErrNotLoaded
	}

	if existing, ok := s.users[name]; ok {
		upgraded, changed := schema.NormalizeRecord(*existing)
		if changed {
			prev := *existing
			*existing = upgraded
			if err := s.save(ctx); err != nil {
				*existing = prev
				return model.UserRecord{}, err
			}
			s.logger.Info("record backfilled", slog.String("name", name))
		}
		s.metrics.Registration(false)
		return existing.Clone(), nil
	}

	rec := model.NewUserRecord(name)
	s.users[name] = &rec
	s.order = append(s.order, name)
	if err := s.save(ctx); err != nil {
		delete(s.users, name)
		s.order = s.order[:len(s.order)-1]
		return model.UserRecord{}, err
	}

	s.metrics.Registration(true)
	s.metrics.SetUsers(len(s.users))
	s.logger.Info("user registered", slog.String("name", name))
	return rec.Clone(), nil
}

// SubmitScore appends value to the user's sequence for mode and counts the game
func (s *Service) SubmitScore(ctx context.Context, name string, mode model.Mode, value float64) (model.UserRecord, error) {
	if _, err := model.ParseMode(string(mode)); err != nil {
		return model.UserRecord{}, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return model.UserRecord{}, model.ErrInvalidScore
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return model.UserRecord{}, ErrNotLoaded
	}

	rec, ok := s.users[name]
	if !ok {
		return model.UserRecord{}, fmt.Errorf("%w: %q", model.ErrUserNotRegistered, name)
	}

	prev := rec.Clone()
	rec.AddScore(mode, value)
	if err := s.save(ctx); err != nil {
		*rec = prev
		return model.UserRecord{}, err
	}

	s.metrics.Submission(mode)
	s.logger.Info("score submitted",
		slog.String("name", name),
		slog.String("mode", string(mode)),
		slog.Float64("score", value),
	)
	return rec.Clone(), nil
}

// Get returns a copy of one record
func (s *Service) Get(name string) (model.UserRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[name]
	if !ok {
		return model.UserRecord{}, false
	}
	return rec.Clone(), true
}

// ListUsernames returns every registered name. Callers must not rely on order.
func (s *Service) ListUsernames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Len returns the number of registered users
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Snapshot returns a deep copy of the full state, exactly as Save would write it
func (s *Service) Snapshot() model.LedgerDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document()
}

// Flush persists the full state; used at shutdown
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil
	}
	return s.save(ctx)
}

// document builds the ledger document (caller must hold mu)
func (s *Service) document() model.LedgerDocument {
	doc := make(model.LedgerDocument, len(s.users))
	for name, rec := range s.users {
		doc[name] = rec.Clone()
	}
	return doc
}

// save writes the whole document (caller must hold mu)
func (s *Service) save(ctx context.Context) error {
	start := time.Now()
	err := s.ledger.Save(ctx, s.document())
	s.metrics.LedgerSave(time.Since(start), err)
	if err != nil {
		s.logger.Error("ledger save failed", slog.String("error", err.Error()))
		if !errors.Is(err, model.ErrIOFailure) {
			err = storage.IOError("save", err)
		}
		return err
	}
	return nil
}
