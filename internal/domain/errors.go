// Package domain holds the error taxonomy shared by the storage, identity and api layers.
package domain

import "errors"

var (
	// ErrInvalidRequest marks missing or malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound marks an unresolved identity, or a record that is absent
	// or owned by someone else on a read path.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks a write against a record owned by another user.
	ErrForbidden = errors.New("forbidden")
)
