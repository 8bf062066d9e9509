// Package store defines the persistence contracts for accounts and tasks.
// Services depend on these interfaces only; implementations live under
// internal/platform.
package store
