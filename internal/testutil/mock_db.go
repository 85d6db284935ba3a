package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/postgres"
)

var _ postgres.IClient = (*MockDB)(nil) // Ensure MockDB implements IClient

// Snapshotter is a store whose state can be captured and restored
type Snapshotter interface {
	Snapshot() func()
}

type mockTxKey struct{}

// MockDB is a postgres.IClient for in-memory stores. A failing WithTx restores
// every registered store to its state at the start of the call.
type MockDB struct {
	mu     sync.Mutex
	stores []Snapshotter
	logger *logger.Logger

	// FailNextTx makes the next outermost WithTx fail after fn returned successfully
	FailNextTx error
	txCount    int
}

// NewMockDB creates a mock client rolling back the given stores on error
func NewMockDB(logger *logger.Logger, stores ...Snapshotter) *MockDB {
	return &MockDB{
		stores: stores,
		logger: logger,
	}
}

// Register adds stores that take part in transactions
func (db *MockDB) Register(stores ...Snapshotter) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.stores = append(db.stores, stores...)
}

func (db *MockDB) WithTx(ctx context.Context, fn func(context.Context) error) (err error) {
	_, nested := ctx.Value(mockTxKey{}).(bool)

	db.mu.Lock()
	restores := make([]func(), 0, len(db.stores))
	for _, s := range db.stores {
		restores = append(restores, s.Snapshot())
	}
	if !nested {
		db.txCount++
	}
	db.mu.Unlock()

	rollback := func() {
		for _, restore := range restores {
			restore()
		}
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, mockTxKey{}, true)); err != nil {
		rollback()
		return err
	}

	if !nested && db.FailNextTx != nil {
		err, db.FailNextTx = db.FailNextTx, nil
		rollback()
		return err
	}
	return nil
}

// Querier is never used by in-memory stores
func (db *MockDB) Querier(ctx context.Context) postgres.Querier {
	return nil
}

// TxCount returns the number of outermost transactions started
func (db *MockDB) TxCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.txCount
}
