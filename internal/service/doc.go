// Package service contains the application use cases: account credentials
// and the task query and stats engine.
//
// Services validate input, coordinate the stores inside transactions where
// a read-modify-write is involved, and translate store failures into the
// failure kinds of internal/domain. Every error a service returns unwraps to
// exactly one of domain.ErrValidation, domain.ErrNotFound, domain.ErrConflict,
// domain.ErrUnauthorized or domain.ErrInternal.
package service
