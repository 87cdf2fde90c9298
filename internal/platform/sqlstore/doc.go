// Package sqlstore implements the store interfaces over database/sql for
// PostgreSQL (pgx) and SQLite (modernc). Queries are written once with '?'
// placeholders and rebound for the active dialect by DB and Tx, which are the
// only store.DBTX values the stores are meant to receive.
//
// The schema for both dialects is embedded and applied with goose.
package sqlstore
