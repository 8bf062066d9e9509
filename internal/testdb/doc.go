// Package testdb provides PostgreSQL helpers for integration tests: it
// connects to the database named by DATABASE_URL (or TASKS_TEST_DB_URL),
// applies the embedded migrations and isolates each test in a transaction
// that is rolled back afterwards. Tests are skipped when no database is
// configured.
package testdb
