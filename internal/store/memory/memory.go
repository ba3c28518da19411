// Package memory provides an in-process collection used by tests and
// the dev backend.
package memory

import (
	"context"
	"sync"
)

// Collection keeps the record set in memory with copy-in/copy-out
// semantics, so callers cannot mutate the stored slice.
type Collection[T any] struct {
	mu      sync.Mutex
	records []T
}

func New[T any]() *Collection[T] {
	return &Collection[T]{}
}

// Seed creates a collection pre-populated with records.
func Seed[T any](records []T) *Collection[T] {
	c := New[T]()
	c.records = append(c.records, records...)
	return c
}

func (c *Collection[T]) Load(_ context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.records))
	copy(out, c.records)
	return out, nil
}

func (c *Collection[T]) Save(_ context.Context, records []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make([]T, len(records))
	copy(c.records, records)
	return nil
}
