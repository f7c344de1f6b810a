// Package repository is the MySQL persistence layer: the engine-facing
// Store plus per-entity repositories used by the HTTP handlers.  The
// sentinel values below let handlers distinguish failure scenarios
// without inspecting driver errors.  ErrForbidden means the caller
// does not own the resource it targets; ErrConflict means dependent
// records block the operation (e.g. deleting a table that still has
// active bookings).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by someone else.  Handlers translate it into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot proceed
// because of conflicting state.  Handlers translate it into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")
