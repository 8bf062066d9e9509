// Package api exposes the account and task operations over HTTP. Handlers
// decode and validate JSON bodies, resolve the caller from the bearer token
// and map service failures to status codes with client-safe messages.
package api
