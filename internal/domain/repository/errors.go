package repository

import "errors"

// ErrDuplicate is returned when a write hits a uniqueness constraint, such as
// a second called entry for the same doctor.
var ErrDuplicate = errors.New("duplicate record")
