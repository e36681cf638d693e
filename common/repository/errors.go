package repository

import "errors"

// ErrNotFound marks a lookup that matched no row. Callers treat this as a
// normal business outcome, distinct from infrastructure failures.
var ErrNotFound = errors.New("not found")
