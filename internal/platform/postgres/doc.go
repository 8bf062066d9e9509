// Package postgres implements the internal/store interfaces on PostgreSQL
// through database/sql and the pgx stdlib driver. Schema migrations are
// embedded from the migrations directory and applied with goose.
package postgres
