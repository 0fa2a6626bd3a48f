package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/storage"
)

// zstd frame magic number, little endian
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Config holds file ledger settings
type Config struct {
	// Path is the ledger document location
	Path string
	// Compress writes the document as a zstd frame
	Compress bool
	// FileMode is applied to the written document
	FileMode fs.FileMode
}

// DefaultConfig returns the default file ledger configuration
func DefaultConfig() Config {
	return Config{
		Path:     "data/users.json",
		FileMode: 0o644,
	}
}

// Storage is a ledger kept in a single file. Saves go to a temp file in the
// same directory which is synced and renamed over the target, so readers only
// ever see a complete document.
type Storage struct {
	cfg Config

	mu      sync.Mutex
	encoder *zstd.Encoder
	decoder *zstd.Decoder

	// beforeRename runs after the temp file is fully written; tests use it to
	// simulate a crash before the document is replaced
	beforeRename func(tmpPath string) error
}

// New creates a file ledger, creating the parent directory if needed
func New(cfg Config) (*Storage, error) {
	if cfg.Path == "" {
		return nil, errors.New("file ledger path is required")
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = DefaultConfig().FileMode
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	s := &Storage{cfg: cfg, decoder: decoder}

	if cfg.Compress {
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			decoder.Close()
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		s.encoder = encoder
	}
	return s, nil
}

// Ensure Storage implements the interface
var _ storage.Ledger = (*Storage)(nil)

// Path returns the ledger document path
func (s *Storage) Path() string {
	return s.cfg.Path
}

func (s *Storage) Load(ctx context.Context) (model.RawDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.cfg.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.RawDocument{}, nil
		}
		return nil, storage.IOError("read ledger", err)
	}

	if bytes.HasPrefix(data, zstdMagic) {
		data, err = s.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, storage.IOError("decompress ledger", err)
		}
	}
	return storage.DecodeDocument(data)
}

func (s *Storage) Save(ctx context.Context, doc model.LedgerDocument) error {
	data, err := storage.EncodeDocument(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.encoder != nil {
		data = s.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
	}
	if err := s.writeAtomic(data); err != nil {
		return storage.IOError("write ledger", err)
	}
	return nil
}

func (s *Storage) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.cfg.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.cfg.Path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanupTmp := true
	defer func() {
		if cleanupTmp {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(s.cfg.FileMode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	// Sync to disk before the rename makes it visible
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if s.beforeRename != nil {
		if err := s.beforeRename(tmpPath); err != nil {
			return err
		}
	}

	if err := os.Rename(tmpPath, s.cfg.Path); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}
	cleanupTmp = false

	return syncDir(dir)
}

// syncDir persists the rename itself
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	if err := d.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return fmt.Errorf("sync dir: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.encoder != nil {
		_ = s.encoder.Close()
	}
	s.decoder.Close()
	return nil
}
