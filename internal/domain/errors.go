package domain

import "errors"

// ErrNotFound signals that a requested record does not exist (or is
// tombstoned). Distinct from transport/dependency failures so handlers can map
// it to a 404.
var ErrNotFound = errors.New("record not found")

// ErrSessionAlreadyBound signals that another lead already holds the
// session binding. Raised by the unique index on the lead/session relation
// when two writers race; the caller re-reads and merges instead.
var ErrSessionAlreadyBound = errors.New("session already bound to a lead")
