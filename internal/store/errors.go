package store

import "errors"

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates an insert collided with an existing row that the
// caller treated as absent (duplicate email, duplicate derived record).
var ErrConflict = errors.New("conflict")
