// Package events provides types and interfaces for diagnostic domain events.
//
// Services emit events such as account registration or task completion
// without knowing who consumes them. The in-memory emitter fans each event
// out to registered handlers; LogHandler records them through slog.
package events
