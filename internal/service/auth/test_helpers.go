package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/config"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/stretchr/testify/require"
)

// TestJWTSecret is a signing secret long enough for NewJWTService.
const TestJWTSecret = "test-jwt-secret-that-is-32-chars-long"

// DefaultJWTConfig returns a standard configuration for JWT authentication suitable for testing.
func DefaultJWTConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            TestJWTSecret,
		TokenLifetimeMinutes: 60,
		BCryptCost:           4,
		CookieName:           "silabas_session",
	}
}

// NewTestJWTService creates a JWT service with an injectable clock.
func NewTestJWTService(secret string, lifetime time.Duration, timeFunc func() time.Time) JWTService {
	svc, err := newHMACJWTService(secret, lifetime, timeFunc)
	if err != nil {
		// ALLOW-PANIC
		panic(err)
	}
	return svc
}

// RequireTestJWTService creates a JWT service from DefaultJWTConfig.
func RequireTestJWTService(t testing.TB) JWTService {
	t.Helper()
	svc, err := NewJWTService(DefaultJWTConfig())
	require.NoError(t, err, "Failed to create test JWT service")
	return svc
}

// GenerateAuthHeaderForTestingT returns a Bearer header value for the user
// signed with svc.
func GenerateAuthHeaderForTestingT(
	t testing.TB,
	svc JWTService,
	userID uuid.UUID,
	role domain.Role,
) string {
	t.Helper()
	token, err := svc.GenerateToken(context.Background(), userID, role)
	require.NoError(t, err, "Failed to generate auth token")
	return "Bearer " + token
}
