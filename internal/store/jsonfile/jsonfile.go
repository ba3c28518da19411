// Package jsonfile persists a collection as a JSON array in a single
// flat file, one file per entity type.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Collection stores one record type in a JSON document. A mutex
// serializes Load and Save within the process so two requests cannot
// interleave a file read with a partial write. There is no
// cross-process locking.
type Collection[T any] struct {
	mu   sync.Mutex
	path string
}

func New[T any](path string) *Collection[T] {
	return &Collection[T]{path: path}
}

// Path returns the backing document's location.
func (c *Collection[T]) Path() string { return c.path }

// Load reads the backing document. A missing, unreadable, or
// malformed document degrades to an empty collection.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		slog.WarnContext(ctx, "Malformed collection document, loading as empty",
			"path", c.path, "error", err)
		return []T{}, nil
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Save serializes the full record set and overwrites the document,
// creating the containing directory on first write.
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}

	slog.DebugContext(ctx, "Collection saved", "path", c.path, "records", len(records))
	return nil
}
