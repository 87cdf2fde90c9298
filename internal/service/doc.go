// Package service contains the application use cases of the literacy
// service. It orchestrates domain objects and the store interfaces defined
// in internal/store to fulfill features such as account registration,
// progress tracking and the consonant catalog.
//
// Services receive their stores and a transaction starter through
// constructor injection. Operations that span several stores run inside
// store.RunInTransaction and use only the transaction-bound stores obtained
// with WithTx.
//
// Expected failures are reported as sentinel errors (ErrNotOwned,
// ErrUnauthenticated, ...) or as domain.ValidationError; the API layer maps
// them to HTTP status codes.
package service
