package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrActorMissing occurs when a mutating request carries no actor identity.
	ErrActorMissing = errors.New("actor identity missing")
	// ErrLockHeld occurs when another writer holds the per-order lock.
	ErrLockHeld = errors.New("order is locked by another operation")
)
