package testdb

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/platform/sqlstore"
)

// DatabaseURLEnv names the PostgreSQL URL used by OpenPostgres.
const DatabaseURLEnv = "SILABAS_TEST_DATABASE_URL"

// GetTestDatabaseURL returns the PostgreSQL URL for integration tests, or "".
func GetTestDatabaseURL() string {
	return os.Getenv(DatabaseURLEnv)
}

// ShouldSkipDatabaseTest reports whether PostgreSQL integration tests should be skipped.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}

// Open returns a migrated in-memory SQLite database closed at test cleanup.
func Open(t testing.TB) *sqlstore.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := sqlstore.OpenMemory(ctx)
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	migrate(t, ctx, db)
	return db
}

// OpenPostgres returns a migrated PostgreSQL database, skipping the test when
// no test database is configured.
func OpenPostgres(t testing.TB) *sqlstore.DB {
	t.Helper()

	if ShouldSkipDatabaseTest() {
		t.Skip(DatabaseURLEnv + " not set - skipping PostgreSQL integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sqlstore.Open(ctx, sqlstore.Options{
		Dialect:      sqlstore.Postgres,
		URL:          GetTestDatabaseURL(),
		MaxOpenConns: 5,
	})
	if err != nil {
		t.Fatalf("failed to connect to %s: %v", maskDatabaseURL(GetTestDatabaseURL()), err)
	}
	t.Cleanup(func() { _ = db.Close() })

	migrate(t, ctx, db)
	return db
}

func migrate(t testing.TB, ctx context.Context, db *sqlstore.DB) {
	t.Helper()

	quiet := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelWarn}))
	migrator, err := sqlstore.NewMigrator(db, quiet)
	if err != nil {
		t.Fatalf("failed to create migrator: %v", err)
	}
	if err := migrator.Up(ctx); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
}

// SeedConsonant inserts a consonant and returns it.
func SeedConsonant(t testing.TB, db *sqlstore.DB, letter, name string) *domain.Consonant {
	t.Helper()

	c, err := domain.NewConsonant(letter, name)
	if err != nil {
		t.Fatalf("invalid consonant %q: %v", letter, err)
	}
	if err := sqlstore.NewConsonantStore(db, nil).Create(context.Background(), c); err != nil {
		t.Fatalf("failed to seed consonant %q: %v", letter, err)
	}
	return c
}

// SeedUser inserts an account with a placeholder password hash and returns it.
func SeedUser(t testing.TB, db *sqlstore.DB, email string, role domain.Role) *domain.User {
	t.Helper()

	now := time.Now().UTC()
	u := &domain.User{
		ID:             uuid.New(),
		Email:          email,
		Name:           "Test User",
		Role:           role,
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuuGdcQSzNeVtyE0hqYd7zQb6LlJt0rPrS",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := sqlstore.NewUserStore(db, nil).Create(context.Background(), u); err != nil {
		t.Fatalf("failed to seed user %q: %v", email, err)
	}
	return u
}

// testWriter forwards log output to the test log.
type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
