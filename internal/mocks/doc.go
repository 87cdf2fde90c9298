// Package mocks provides centralized mock implementations for testing.
//
// The mocks use function fields for per-test behavior and fall back to
// default return values when a function is not set. Service mocks also record
// their calls so handler tests can assert on what reached the service layer.
//
// Usage:
//
//	import "github.com/phrazzld/silabas-api/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    jwtSvc := &mocks.MockJWTService{
//	        GenerateTokenFn: func(ctx context.Context, userID uuid.UUID, role domain.Role) (string, error) {
//	            return "mocked-token", nil
//	        },
//	    }
//
//	    // Use the mock in your test...
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Add a compile-time assertion that the mock satisfies the interface
package mocks
