// Package middleware holds the HTTP middleware specific to this API: bearer
// token authentication with revocation checks and request tracing.
package middleware
