// Package store holds the persistence backends for users and exercises.
// All backends share one contract: creation-order listing, ErrNotFound for
// absent or unparseable ids, and log filtering applied before the limit.
package store

import "errors"

// ErrNotFound is returned when a record does not exist or its id is malformed.
var ErrNotFound = errors.New("record not found")
