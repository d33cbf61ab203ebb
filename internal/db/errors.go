package db

import "errors"

// Domain-level database error sentinels.
var (
	// Share errors
	ErrShareNotFound  = errors.New("share not found")
	ErrDuplicateSlug  = errors.New("custom slug already exists")
	ErrDuplicateToken = errors.New("share token already exists")
	ErrQuotaExhausted = errors.New("maximum access count reached")

	// URN errors
	ErrUrnNotFound = errors.New("urn not found")
)
