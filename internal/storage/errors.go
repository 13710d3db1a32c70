package storage

import "github.com/rodzerz/customs-crm/pkg/platform/sentinel"

// ErrNotFound keeps storage-specific 404s consistent across the in-memory,
// PostgreSQL, and Redis implementations.
var ErrNotFound = sentinel.ErrNotFound

// ErrConflict is returned when a unique key (external id) is already taken.
var ErrConflict = sentinel.ErrConflict
