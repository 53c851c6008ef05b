// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx stdlib driver. Every store accepts a store.DBTX so
// the same code runs against a pool or inside a transaction via WithTx.
//
// The schema lives in the migrations subpackage and is applied with goose.
package postgres
