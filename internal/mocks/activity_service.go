package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/service"
	"github.com/phrazzld/silabas-api/internal/service/activity"
	"github.com/phrazzld/silabas-api/internal/store"
)

// MockActivityService implements activity.Service for testing
type MockActivityService struct {
	// Custom behavior functions
	StartFn func(ctx context.Context, caller domain.Session, req activity.StartRequest) (*activity.StartResult, error)
	GetProgressFn func(
		ctx context.Context, caller domain.Session, sessionID uuid.UUID,
	) (*activity.ProgressResult, error)
	UpdateProgressFn func(
		ctx context.Context, caller domain.Session, sessionID uuid.UUID, update domain.ProgressUpdate,
	) (*activity.ProgressResult, error)
	CompleteFn func(
		ctx context.Context, caller domain.Session, sessionID uuid.UUID, result domain.CompletionResult,
	) (*activity.CompleteResult, error)

	// Default response values
	StartResult    *activity.StartResult
	ProgressResult *activity.ProgressResult
	CompleteResult *activity.CompleteResult
	Err            error

	// Call tracking for verification
	Calls struct {
		mu         sync.Mutex
		Starts     []activity.StartRequest
		Updates    []domain.ProgressUpdate
		Completes  []domain.CompletionResult
		SessionIDs []uuid.UUID
		Callers    []domain.Session
	}
}

var _ activity.Service = (*MockActivityService)(nil)

func (m *MockActivityService) record(caller domain.Session, sessionID uuid.UUID) {
	m.Calls.mu.Lock()
	defer m.Calls.mu.Unlock()
	m.Calls.Callers = append(m.Calls.Callers, caller)
	if sessionID != uuid.Nil {
		m.Calls.SessionIDs = append(m.Calls.SessionIDs, sessionID)
	}
}

// Start implements the activity.Service interface
func (m *MockActivityService) Start(
	ctx context.Context,
	caller domain.Session,
	req activity.StartRequest,
) (*activity.StartResult, error) {
	m.record(caller, uuid.Nil)
	m.Calls.mu.Lock()
	m.Calls.Starts = append(m.Calls.Starts, req)
	m.Calls.mu.Unlock()

	if m.StartFn != nil {
		return m.StartFn(ctx, caller, req)
	}
	return m.StartResult, m.Err
}

// GetProgress implements the activity.Service interface
func (m *MockActivityService) GetProgress(
	ctx context.Context,
	caller domain.Session,
	sessionID uuid.UUID,
) (*activity.ProgressResult, error) {
	m.record(caller, sessionID)

	if m.GetProgressFn != nil {
		return m.GetProgressFn(ctx, caller, sessionID)
	}
	return m.ProgressResult, m.Err
}

// UpdateProgress implements the activity.Service interface
func (m *MockActivityService) UpdateProgress(
	ctx context.Context,
	caller domain.Session,
	sessionID uuid.UUID,
	update domain.ProgressUpdate,
) (*activity.ProgressResult, error) {
	m.record(caller, sessionID)
	m.Calls.mu.Lock()
	m.Calls.Updates = append(m.Calls.Updates, update)
	m.Calls.mu.Unlock()

	if m.UpdateProgressFn != nil {
		return m.UpdateProgressFn(ctx, caller, sessionID, update)
	}
	return m.ProgressResult, m.Err
}

// Complete implements the activity.Service interface
func (m *MockActivityService) Complete(
	ctx context.Context,
	caller domain.Session,
	sessionID uuid.UUID,
	result domain.CompletionResult,
) (*activity.CompleteResult, error) {
	m.record(caller, sessionID)
	m.Calls.mu.Lock()
	m.Calls.Completes = append(m.Calls.Completes, result)
	m.Calls.mu.Unlock()

	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, caller, sessionID, result)
	}
	return m.CompleteResult, m.Err
}

// CallCount returns how many calls reached the mock.
func (m *MockActivityService) CallCount() int {
	m.Calls.mu.Lock()
	defer m.Calls.mu.Unlock()
	return len(m.Calls.Callers)
}

// LastCaller returns the session of the most recent call, or nil.
func (m *MockActivityService) LastCaller() domain.Session {
	m.Calls.mu.Lock()
	defer m.Calls.mu.Unlock()
	if len(m.Calls.Callers) == 0 {
		return nil
	}
	return m.Calls.Callers[len(m.Calls.Callers)-1]
}

// Reset resets the call tracking state
func (m *MockActivityService) Reset() {
	m.Calls.mu.Lock()
	defer m.Calls.mu.Unlock()

	m.Calls.Starts = nil
	m.Calls.Updates = nil
	m.Calls.Completes = nil
	m.Calls.SessionIDs = nil
	m.Calls.Callers = nil
}

// Functional option pattern for configuring mock

// ActivityOption is a function type that configures a MockActivityService
type ActivityOption func(*MockActivityService)

// WithStartResult sets the default result of Start
func WithStartResult(res *activity.StartResult) ActivityOption {
	return func(m *MockActivityService) {
		m.StartResult = res
	}
}

// WithProgressResult sets the default result of GetProgress and UpdateProgress
func WithProgressResult(res *activity.ProgressResult) ActivityOption {
	return func(m *MockActivityService) {
		m.ProgressResult = res
	}
}

// WithCompleteResult sets the default result of Complete
func WithCompleteResult(res *activity.CompleteResult) ActivityOption {
	return func(m *MockActivityService) {
		m.CompleteResult = res
	}
}

// WithError sets the default error returned by every method
func WithError(err error) ActivityOption {
	return func(m *MockActivityService) {
		m.Err = err
	}
}

// NewMockActivityService creates a new MockActivityService with the given options
func NewMockActivityService(opts ...ActivityOption) *MockActivityService {
	m := &MockActivityService{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Convenience constructors for common test scenarios

// NewMockActivityServiceWithSessionNotFound returns a mock that simulates a missing session
func NewMockActivityServiceWithSessionNotFound() *MockActivityService {
	return NewMockActivityService(WithError(store.ErrSessionNotFound))
}

// NewMockActivityServiceWithSessionNotOwned returns a mock that simulates a session owned by someone else
func NewMockActivityServiceWithSessionNotOwned() *MockActivityService {
	return NewMockActivityService(WithError(service.ErrNotOwned))
}

// NewMockActivityServiceWithSessionCompleted returns a mock that simulates an already completed session
func NewMockActivityServiceWithSessionCompleted() *MockActivityService {
	return NewMockActivityService(WithError(service.ErrSessionCompleted))
}
