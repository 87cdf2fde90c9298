package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/platform/logger"
	"github.com/phrazzld/silabas-api/internal/store"
)

// ConsonantSeed is a consonant created by SeedConsonants.
type ConsonantSeed struct {
	Letter string
	Name   string
}

// DefaultConsonants is the catalog seeded on first use.
var DefaultConsonants = []ConsonantSeed{
	{Letter: "B", Name: "Be"},
	{Letter: "C", Name: "Ce"},
	{Letter: "D", Name: "De"},
	{Letter: "F", Name: "Efe"},
	{Letter: "G", Name: "Ge"},
	{Letter: "L", Name: "Ele"},
	{Letter: "M", Name: "Eme"},
	{Letter: "N", Name: "Ene"},
	{Letter: "P", Name: "Pe"},
	{Letter: "R", Name: "Erre"},
	{Letter: "S", Name: "Ese"},
	{Letter: "T", Name: "Te"},
}

// ConsonantService manages the consonant catalog.
type ConsonantService interface {
	// SeedConsonants inserts every DefaultConsonants entry that is missing.
	// Existing letters are left untouched. Returns the number inserted.
	SeedConsonants(ctx context.Context) (int, error)

	// ListConsonants returns all consonants ordered by letter.
	ListConsonants(ctx context.Context) ([]*domain.Consonant, error)

	// CreateConsonant adds a consonant. Returns store.ErrLetterExists for a
	// letter already in the catalog.
	CreateConsonant(ctx context.Context, letter, name string) (*domain.Consonant, error)
}

type consonantServiceImpl struct {
	consonantStore store.ConsonantStore
	db             store.TxBeginner
	logger         *slog.Logger
}

var _ ConsonantService = (*consonantServiceImpl)(nil)

// NewConsonantService creates a ConsonantService.
func NewConsonantService(
	consonantStore store.ConsonantStore,
	db store.TxBeginner,
	logger *slog.Logger,
) ConsonantService {
	if consonantStore == nil || db == nil {
		panic("consonant service dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &consonantServiceImpl{
		consonantStore: consonantStore,
		db:             db,
		logger:         logger.With(slog.String("component", "consonant_service")),
	}
}

func (s *consonantServiceImpl) SeedConsonants(ctx context.Context) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	inserted := 0
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		txStore := s.consonantStore.WithTx(tx)
		inserted = 0
		for _, seed := range DefaultConsonants {
			c, err := domain.NewConsonant(seed.Letter, seed.Name)
			if err != nil {
				return fmt.Errorf("invalid seed consonant %q: %w", seed.Letter, err)
			}
			created, err := txStore.CreateIfAbsent(ctx, c)
			if err != nil {
				return err
			}
			if created {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to seed consonants", slog.String("error", err.Error()))
		return 0, NewServiceError("consonant", "seed", err)
	}

	if inserted > 0 {
		log.Info("seeded consonants", slog.Int("inserted", inserted))
	}
	return inserted, nil
}

func (s *consonantServiceImpl) ListConsonants(ctx context.Context) ([]*domain.Consonant, error) {
	consonants, err := s.consonantStore.List(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list consonants",
			slog.String("error", err.Error()))
		return nil, NewServiceError("consonant", "list", err)
	}
	return consonants, nil
}

func (s *consonantServiceImpl) CreateConsonant(
	ctx context.Context,
	letter, name string,
) (*domain.Consonant, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	c, err := domain.NewConsonant(letter, name)
	if err != nil {
		return nil, err
	}

	if err := s.consonantStore.Create(ctx, c); err != nil {
		if errors.Is(err, store.ErrLetterExists) {
			log.Debug("consonant letter already exists", slog.String("letter", c.Letter))
			return nil, err
		}
		log.Error("failed to create consonant",
			slog.String("error", err.Error()),
			slog.String("letter", c.Letter))
		return nil, NewServiceError("consonant", "create", err)
	}

	log.Info("consonant created",
		slog.String("consonant_id", c.ID.String()),
		slog.String("letter", c.Letter))
	return c, nil
}
