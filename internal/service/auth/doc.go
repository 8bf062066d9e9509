// Package auth issues and validates JWT token pairs, hashes passwords with
// bcrypt and defines the token revocation boundary.
package auth
