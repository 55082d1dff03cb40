package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Opener connects to a backend using a backend-specific connection string.
type Opener func(ctx context.Context, connection string) (Store, error)

var (
	registry = make(map[string]Opener)
	mu       sync.RWMutex
)

// Register adds a backend to the registry.
func Register(name string, open Opener) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = open
}

// Open connects to the named backend.
func Open(ctx context.Context, name, connection string) (Store, error) {
	mu.RLock()
	open, ok := registry[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown backend: %s", name)
	}
	return open(ctx, connection)
}

// List returns all registered backend names in ascending order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
