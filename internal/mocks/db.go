package mocks

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/phrazzld/silabas-api/internal/store"
)

// ErrMockDB is returned by MockTx statements that have no custom behavior.
var ErrMockDB = errors.New("mock database: statement not supported")

// MockDB implements store.TxBeginner for testing.
type MockDB struct {
	BeginTxFn func(ctx context.Context, opts *sql.TxOptions) (store.Tx, error)

	mu  sync.Mutex
	Txs []*MockTx
}

var _ store.TxBeginner = (*MockDB)(nil)

// NewMockDB creates a MockDB whose transactions record commits and rollbacks.
func NewMockDB() *MockDB {
	return &MockDB{}
}

// BeginTx implements store.TxBeginner.
func (m *MockDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (store.Tx, error) {
	if m.BeginTxFn != nil {
		return m.BeginTxFn(ctx, opts)
	}
	tx := &MockTx{}
	m.mu.Lock()
	m.Txs = append(m.Txs, tx)
	m.mu.Unlock()
	return tx, nil
}

// LastTx returns the most recently started transaction, or nil.
func (m *MockDB) LastTx() *MockTx {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Txs) == 0 {
		return nil
	}
	return m.Txs[len(m.Txs)-1]
}

// MockTx implements store.Tx. Statements fail with ErrMockDB; stores under
// test are expected to be mocks that ignore the transaction handle.
type MockTx struct {
	CommitErr   error
	RollbackErr error

	Committed  bool
	RolledBack bool
}

var _ store.Tx = (*MockTx)(nil)

// Commit implements store.Tx.
func (t *MockTx) Commit() error {
	t.Committed = true
	return t.CommitErr
}

// Rollback implements store.Tx.
func (t *MockTx) Rollback() error {
	t.RolledBack = true
	return t.RollbackErr
}

// ExecContext implements store.DBTX.
func (t *MockTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, ErrMockDB
}

// PrepareContext implements store.DBTX.
func (t *MockTx) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return nil, ErrMockDB
}

// QueryContext implements store.DBTX.
func (t *MockTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, ErrMockDB
}

// QueryRowContext implements store.DBTX. It returns nil, so callers must not
// scan the result.
func (t *MockTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return nil
}
