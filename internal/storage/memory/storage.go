package memory

import (
	"context"
	"sync"

	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/storage"
)

// Storage is an in-memory ledger. It keeps the encoded document so loads go
// through the same codec as the durable backends.
type Storage struct {
	mu sync.RWMutex

	data  []byte
	saves int

	// Injected failures for tests
	saveErr error
	loadErr error
}

// New creates a new in-memory ledger
func New() *Storage {
	return &Storage{}
}

// NewWithData creates an in-memory ledger holding pre-encoded document bytes
func NewWithData(data []byte) *Storage {
	s := New()
	s.data = append([]byte(nil), data...)
	return s
}

// Ensure Storage implements the interface
var _ storage.Ledger = (*Storage)(nil)

func (s *Storage) Load(ctx context.Context) (model.RawDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loadErr != nil {
		return nil, storage.IOError("load", s.loadErr)
	}
	return storage.DecodeDocument(s.data)
}

func (s *Storage) Save(ctx context.Context, doc model.LedgerDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return storage.IOError("save", s.saveErr)
	}
	data, err := storage.EncodeDocument(doc)
	if err != nil {
		return err
	}
	s.data = data
	s.saves++
	return nil
}

func (s *Storage) Close() error {
	return nil
}

// Bytes returns a copy of the stored document
func (s *Storage) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.data...)
}

// Saves returns how many saves have succeeded
func (s *Storage) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// FailSaves makes every subsequent Save fail with err (nil clears it)
func (s *Storage) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// FailLoads makes every subsequent Load fail with err (nil clears it)
func (s *Storage) FailLoads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}
