package storage

import (
	"context"

	"github.com/mcoot/scorekeeper/internal/model"
)

// Ledger persists the full set of user records as a single document
type Ledger interface {
	// Load returns the stored document, or an empty one if nothing has been saved.
	// Malformed content fails with model.ErrIOFailure.
	Load(ctx context.Context) (model.RawDocument, error)

	// Save replaces the stored document atomically. The previous content stays
	// intact if Save fails.
	Save(ctx context.Context, doc model.LedgerDocument) error

	Close() error
}
