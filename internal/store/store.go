// Package store defines the record-store port: whole-collection
// persistence for one entity type, loaded and saved as a unit.
package store

import "context"

// Collection persists an entire record set as a single document.
//
// Load returns an empty slice when the backing document is absent or
// cannot be decoded; callers never observe a distinction between
// "never created" and "corrupt". Save overwrites the whole document.
type Collection[T any] interface {
	Load(ctx context.Context) ([]T, error)
	Save(ctx context.Context, records []T) error
}
