// Package domain holds the error taxonomy shared by the stores, the drive
// service and the HTTP layer.
package domain

import "errors"

var (
	// ErrNotFound covers missing records and records owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrConflict is a sibling name collision.
	ErrConflict = errors.New("already exists")
	// ErrValidation is rejected input: empty names, negative sizes and the like.
	ErrValidation = errors.New("validation failed")
	// ErrStoreUnavailable means the metadata store failed. Always fatal to the operation.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrBlobStore means the object store failed. Never fatal to a metadata delete.
	ErrBlobStore = errors.New("blob store failure")

	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)
