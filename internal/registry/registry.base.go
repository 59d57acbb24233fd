// Package registry provides a thread-safe generic registry of named singletons,
// used to share long-lived handles such as MongoDB collections across the server.
package registry

import (
	"fmt"
	"sync"

	"github.com/scottcame/piet/internal/common"
)

// Registry is a thread-safe map of named items.
//
// Example:
//
//	cols := NewRegistry[*mongo.Collection]()
//	cols.Register("analysis", db.Collection("analysis"))
//	if col, ok := cols.Get("analysis"); ok {
//	    ...
//	}
type Registry[T any] struct {
	items map[string]T
	mu    sync.RWMutex
}

// NewRegistry returns an empty registry
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		items: make(map[string]T),
	}
}

// Register stores item under name, replacing any previous item.
// isNew reports whether name was unused before the call.
func (r *Registry[T]) Register(name string, item T) (isNew bool, err error) {
	if name == "" {
		return false, fmt.Errorf("registry name cannot be empty: %w", common.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.items[name]
	r.items[name] = item
	return !exists, nil
}

// Get returns the item registered under name
func (r *Registry[T]) Get(name string) (item T, exists bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, exists = r.items[name]
	return item, exists
}

// MustGet is Get for items registered during startup; it fails when name is unknown
func (r *Registry[T]) MustGet(name string) (T, error) {
	item, ok := r.Get(name)
	if !ok {
		return item, fmt.Errorf("registry item %q: %w", name, common.ErrNotFound)
	}
	return item, nil
}
