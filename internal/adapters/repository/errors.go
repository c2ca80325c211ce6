package repository

import "errors"

// Sentinel errors for view storage.
var (
	ErrNotFound    = errors.New("view not found")
	ErrInvalidView = errors.New("invalid view")
	ErrStoreClosed = errors.New("view store closed")
)
