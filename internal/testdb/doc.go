// Package testdb provides database fixtures for tests.
//
// Open returns a private, fully migrated in-memory SQLite database, so store,
// service and HTTP tests run against the real schema without external
// services. OpenPostgres does the same against the database named by
// SILABAS_TEST_DATABASE_URL and skips the test when it is unset. WithTx runs
// a test body inside a transaction that is always rolled back.
//
//	func TestMyFeature(t *testing.T) {
//	    db := testdb.Open(t)
//	    consonants := sqlstore.NewConsonantStore(db, nil)
//	    ...
//	}
package testdb
