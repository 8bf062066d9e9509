// Package mocks provides centralized mock implementations for testing.
//
// Store mocks use testify/mock so tests can assert on the exact calls made.
// Collaborators with simple behavior (hasher, JWT service, revoker, event
// emitter) use function fields with defaults instead.
//
// Usage:
//
//	users := new(mocks.MockUserStore)
//	users.On("GetByEmail", mock.Anything, "ada@example.com").
//	    Return(nil, store.ErrUserNotFound)
//	defer users.AssertExpectations(t)
package mocks
