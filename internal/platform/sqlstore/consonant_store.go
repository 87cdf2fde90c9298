package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/platform/logger"
	"github.com/phrazzld/silabas-api/internal/store"
)

const consonantColumns = `id, letter, name, created_at, updated_at`

// ConsonantStore implements store.ConsonantStore.
type ConsonantStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewConsonantStore creates a ConsonantStore.
// If logger is nil, a default logger will be used.
func NewConsonantStore(db store.DBTX, logger *slog.Logger) *ConsonantStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsonantStore{
		db:     db,
		logger: logger.With(slog.String("component", "consonant_store")),
	}
}

var _ store.ConsonantStore = (*ConsonantStore)(nil)

// WithTx implements store.ConsonantStore.WithTx.
func (s *ConsonantStore) WithTx(tx store.DBTX) store.ConsonantStore {
	return &ConsonantStore{db: tx, logger: s.logger}
}

// Create implements store.ConsonantStore.Create.
func (s *ConsonantStore) Create(ctx context.Context, c *domain.Consonant) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := c.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO consonants (id, letter, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Letter, c.Name, utc(c.CreatedAt), utc(c.UpdatedAt),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("consonant letter already exists", slog.String("letter", c.Letter))
			return MapUniqueViolation(err, store.ErrLetterExists)
		}
		log.Error("failed to create consonant",
			slog.String("error", err.Error()),
			slog.String("letter", c.Letter))
		return MapError(err)
	}

	log.Info("consonant created",
		slog.String("consonant_id", c.ID.String()),
		slog.String("letter", c.Letter))
	return nil
}

// CreateIfAbsent implements store.ConsonantStore.CreateIfAbsent.
func (s *ConsonantStore) CreateIfAbsent(ctx context.Context, c *domain.Consonant) (bool, error) {
	if err := c.Validate(); err != nil {
		return false, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO consonants (id, letter, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (letter) DO NOTHING`,
		c.ID, c.Letter, c.Name, utc(c.CreatedAt), utc(c.UpdatedAt),
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to seed consonant",
			slog.String("error", err.Error()),
			slog.String("letter", c.Letter))
		return false, MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// GetByID implements store.ConsonantStore.GetByID.
func (s *ConsonantStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Consonant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+consonantColumns+` FROM consonants WHERE id = ?`, id)
	return s.scanOne(ctx, row, slog.String("consonant_id", id.String()))
}

// GetByLetter implements store.ConsonantStore.GetByLetter.
func (s *ConsonantStore) GetByLetter(ctx context.Context, letter string) (*domain.Consonant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+consonantColumns+` FROM consonants WHERE letter = ?`, domain.NormalizeLetter(letter))
	return s.scanOne(ctx, row, slog.String("letter", letter))
}

// List implements store.ConsonantStore.List.
func (s *ConsonantStore) List(ctx context.Context) ([]*domain.Consonant, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+consonantColumns+` FROM consonants ORDER BY letter ASC`)
	if err != nil {
		log.Error("failed to list consonants", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	consonants := []*domain.Consonant{}
	for rows.Next() {
		c, err := scanConsonant(rows)
		if err != nil {
			return nil, err
		}
		consonants = append(consonants, c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return consonants, nil
}

func (s *ConsonantStore) scanOne(ctx context.Context, row *sql.Row, key slog.Attr) (*domain.Consonant, error) {
	c, err := scanConsonant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrConsonantNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get consonant",
			slog.String("error", err.Error()), key)
		return nil, MapError(err)
	}
	return c, nil
}

func scanConsonant(row rowScanner) (*domain.Consonant, error) {
	var c domain.Consonant
	if err := row.Scan(&c.ID, &c.Letter, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}
