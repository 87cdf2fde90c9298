package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/phrazzld/silabas-api/internal/store"
	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

// sqlitePragmas are appended to every SQLite DSN.
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

// Options configures Open.
type Options struct {
	Dialect      Dialect
	URL          string
	MaxOpenConns int
	PingTimeout  time.Duration
}

// DB wraps *sql.DB and rebinds queries for its dialect.
type DB struct {
	sqlDB   *sql.DB
	dialect Dialect
}

var (
	_ store.DBTX       = (*DB)(nil)
	_ store.TxBeginner = (*DB)(nil)
	_ store.Tx         = (*Tx)(nil)
)

// Open opens and pings a database.
func Open(ctx context.Context, opts Options) (*DB, error) {
	dsn := opts.URL
	if opts.Dialect == SQLite {
		dsn = SQLiteDSN(dsn)
	}

	sqlDB, err := sql.Open(opts.Dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	switch {
	case opts.Dialect == SQLite:
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY
		// under concurrent requests.
		sqlDB.SetMaxOpenConns(1)
	case opts.MaxOpenConns > 0:
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		sqlDB.SetMaxIdleConns(opts.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{sqlDB: sqlDB, dialect: opts.Dialect}, nil
}

// OpenMemory opens a private in-memory SQLite database.
func OpenMemory(ctx context.Context) (*DB, error) {
	return Open(ctx, Options{
		Dialect: SQLite,
		URL:     "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
}

// SQLiteDSN appends the connection pragmas to a SQLite path or file: URI.
func SQLiteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqlitePragmas
	}
	return dsn + "?" + sqlitePragmas
}

// Dialect returns the database flavor.
func (db *DB) Dialect() Dialect { return db.dialect }

// Raw returns the underlying handle, e.g. for migrations.
func (db *DB) Raw() *sql.DB { return db.sqlDB }

// ExecContext implements store.DBTX.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.sqlDB.ExecContext(ctx, db.dialect.Rebind(query), args...)
}

// PrepareContext implements store.DBTX.
func (db *DB) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return db.sqlDB.PrepareContext(ctx, db.dialect.Rebind(query))
}

// QueryContext implements store.DBTX.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.sqlDB.QueryContext(ctx, db.dialect.Rebind(query), args...)
}

// QueryRowContext implements store.DBTX.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.sqlDB.QueryRowContext(ctx, db.dialect.Rebind(query), args...)
}

// BeginTx implements store.TxBeginner.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (store.Tx, error) {
	tx, err := db.sqlDB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, dialect: db.dialect}, nil
}

// PingContext verifies the connection is alive.
func (db *DB) PingContext(ctx context.Context) error {
	return db.sqlDB.PingContext(ctx)
}

// Close closes the database.
func (db *DB) Close() error {
	return db.sqlDB.Close()
}

// Tx wraps *sql.Tx and rebinds queries for its dialect.
type Tx struct {
	tx      *sql.Tx
	dialect Dialect
}

// ExecContext implements store.DBTX.
func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.dialect.Rebind(query), args...)
}

// PrepareContext implements store.DBTX.
func (t *Tx) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return t.tx.PrepareContext(ctx, t.dialect.Rebind(query))
}

// QueryContext implements store.DBTX.
func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, t.dialect.Rebind(query), args...)
}

// QueryRowContext implements store.DBTX.
func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.dialect.Rebind(query), args...)
}

// Commit commits the transaction.
func (t *Tx) Commit() error { return t.tx.Commit() }

// Rollback aborts the transaction.
func (t *Tx) Rollback() error { return t.tx.Rollback() }
