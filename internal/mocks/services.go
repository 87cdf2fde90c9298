package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/service"
)

// MockConsonantService implements service.ConsonantService for testing
type MockConsonantService struct {
	SeedConsonantsFn  func(ctx context.Context) (int, error)
	ListConsonantsFn  func(ctx context.Context) ([]*domain.Consonant, error)
	CreateConsonantFn func(ctx context.Context, letter, name string) (*domain.Consonant, error)

	// Default return values
	Consonants   []*domain.Consonant
	DefaultError error

	mu        sync.Mutex
	SeedCalls int
}

var _ service.ConsonantService = (*MockConsonantService)(nil)

// SeedConsonants implements the ConsonantService.SeedConsonants method
func (m *MockConsonantService) SeedConsonants(ctx context.Context) (int, error) {
	m.mu.Lock()
	m.SeedCalls++
	m.mu.Unlock()

	if m.SeedConsonantsFn != nil {
		return m.SeedConsonantsFn(ctx)
	}
	return 0, m.DefaultError
}

// ListConsonants implements the ConsonantService.ListConsonants method
func (m *MockConsonantService) ListConsonants(ctx context.Context) ([]*domain.Consonant, error) {
	if m.ListConsonantsFn != nil {
		return m.ListConsonantsFn(ctx)
	}
	return m.Consonants, m.DefaultError
}

// CreateConsonant implements the ConsonantService.CreateConsonant method
func (m *MockConsonantService) CreateConsonant(
	ctx context.Context,
	letter, name string,
) (*domain.Consonant, error) {
	if m.CreateConsonantFn != nil {
		return m.CreateConsonantFn(ctx, letter, name)
	}
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}
	return domain.NewConsonant(letter, name)
}

// MockProgressService implements service.ProgressService for testing
type MockProgressService struct {
	GetProgressFn  func(ctx context.Context, owner domain.Owner, consonantID uuid.UUID) (*domain.UserProgress, error)
	ListProgressFn func(ctx context.Context, owner domain.Owner) ([]*domain.UserProgress, error)
	SaveProgressFn func(
		ctx context.Context, owner domain.Owner, consonantID uuid.UUID, wordsCompleted, totalWords int,
	) (*domain.UserProgress, error)
	MigrateAnonymousProgressFn func(
		ctx context.Context, caller domain.Session, sessionID string, userID uuid.UUID,
	) (*service.MigrationResult, error)
	SummaryFn func(ctx context.Context, caller domain.Session, sessionID string) (*service.Summary, error)

	// Default return values
	Progress     *domain.UserProgress
	Records      []*domain.UserProgress
	Migration    *service.MigrationResult
	SummaryValue *service.Summary
	DefaultError error

	mu     sync.Mutex
	Owners []domain.Owner
}

var _ service.ProgressService = (*MockProgressService)(nil)

func (m *MockProgressService) recordOwner(owner domain.Owner) {
	m.mu.Lock()
	m.Owners = append(m.Owners, owner)
	m.mu.Unlock()
}

// GetProgress implements the ProgressService.GetProgress method
func (m *MockProgressService) GetProgress(
	ctx context.Context,
	owner domain.Owner,
	consonantID uuid.UUID,
) (*domain.UserProgress, error) {
	m.recordOwner(owner)
	if m.GetProgressFn != nil {
		return m.GetProgressFn(ctx, owner, consonantID)
	}
	return m.Progress, m.DefaultError
}

// ListProgress implements the ProgressService.ListProgress method
func (m *MockProgressService) ListProgress(
	ctx context.Context,
	owner domain.Owner,
) ([]*domain.UserProgress, error) {
	m.recordOwner(owner)
	if m.ListProgressFn != nil {
		return m.ListProgressFn(ctx, owner)
	}
	return m.Records, m.DefaultError
}

// SaveProgress implements the ProgressService.SaveProgress method
func (m *MockProgressService) SaveProgress(
	ctx context.Context,
	owner domain.Owner,
	consonantID uuid.UUID,
	wordsCompleted, totalWords int,
) (*domain.UserProgress, error) {
	m.recordOwner(owner)
	if m.SaveProgressFn != nil {
		return m.SaveProgressFn(ctx, owner, consonantID, wordsCompleted, totalWords)
	}
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}
	return domain.NewUserProgress(owner, consonantID, wordsCompleted, totalWords)
}

// MigrateAnonymousProgress implements the ProgressService.MigrateAnonymousProgress method
func (m *MockProgressService) MigrateAnonymousProgress(
	ctx context.Context,
	caller domain.Session,
	sessionID string,
	userID uuid.UUID,
) (*service.MigrationResult, error) {
	if m.MigrateAnonymousProgressFn != nil {
		return m.MigrateAnonymousProgressFn(ctx, caller, sessionID, userID)
	}
	return m.Migration, m.DefaultError
}

// Summary implements the ProgressService.Summary method
func (m *MockProgressService) Summary(
	ctx context.Context,
	caller domain.Session,
	sessionID string,
) (*service.Summary, error) {
	if m.SummaryFn != nil {
		return m.SummaryFn(ctx, caller, sessionID)
	}
	return m.SummaryValue, m.DefaultError
}

// LastOwner returns the owner of the most recent owner-scoped call.
func (m *MockProgressService) LastOwner() (domain.Owner, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Owners) == 0 {
		return domain.Owner{}, false
	}
	return m.Owners[len(m.Owners)-1], true
}

// MockUserService implements service.UserService for testing
type MockUserService struct {
	RegisterFn     func(ctx context.Context, email, name, password string) (*domain.User, error)
	AuthenticateFn func(ctx context.Context, email, password string) (*domain.User, error)
	GetUserFn      func(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// Default return values
	User         *domain.User
	DefaultError error
}

var _ service.UserService = (*MockUserService)(nil)

// Register implements the UserService.Register method
func (m *MockUserService) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, email, name, password)
	}
	return m.User, m.DefaultError
}

// Authenticate implements the UserService.Authenticate method
func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, email, password)
	}
	return m.User, m.DefaultError
}

// GetUser implements the UserService.GetUser method
func (m *MockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, userID)
	}
	return m.User, m.DefaultError
}
