package factory

import (
	"context"

	"github.com/mcoot/scorekeeper/internal/metrics"
	"github.com/mcoot/scorekeeper/internal/storage/memory"
	"github.com/mcoot/scorekeeper/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// MemoryLedger gives tests control over persistence
	MemoryLedger *memory.Storage
}

// NewTestApp creates a loaded App backed by an in-memory ledger
func NewTestApp() *TestApp {
	return NewTestAppWithData(nil)
}

// NewTestAppWithData creates a loaded App whose ledger starts with data.
// It panics if the data cannot be loaded.
func NewTestAppWithData(data []byte) *TestApp {
	ledger := memory.NewWithData(data)
	app := newWithDependencies(ledger, 0, testutil.NopLogger(), metrics.New())
	if err := app.Registry.Load(context.Background()); err != nil {
		panic(err)
	}

	return &TestApp{
		App:          app,
		MemoryLedger: ledger,
	}
}
