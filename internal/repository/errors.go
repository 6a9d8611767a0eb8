package repository

import "errors"

// ErrDuplicate reports a write rejected by a unique index.
var ErrDuplicate = errors.New("duplicate record")
