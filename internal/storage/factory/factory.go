// Package factory creates storage backends based on configuration.
package factory

import (
	"context"
	"fmt"
	"sort"

	"github.com/avigan/tracker/internal/storage"
	"github.com/avigan/tracker/internal/storage/memory"
	"github.com/avigan/tracker/internal/storage/sqlite"
)

// Backend names accepted by New.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// BackendFactory opens a repository for a configured path.
type BackendFactory func(ctx context.Context, path string) (storage.Repository, error)

var backendRegistry = map[string]BackendFactory{
	BackendSQLite: func(ctx context.Context, path string) (storage.Repository, error) {
		return sqlite.New(ctx, path)
	},
	BackendMemory: func(_ context.Context, _ string) (storage.Repository, error) {
		return memory.New(), nil
	},
}

// RegisterBackend registers an additional backend factory.
func RegisterBackend(name string, factory BackendFactory) {
	backendRegistry[name] = factory
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	names := make([]string, 0, len(backendRegistry))
	for name := range backendRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New opens a repository for the given backend name. For sqlite, path is the
// database file (sqlite.MemoryPath for an in-process database); the memory
// backend ignores it.
func New(ctx context.Context, backend, path string) (storage.Repository, error) {
	factory, ok := backendRegistry[backend]
	if !ok {
		return nil, fmt.Errorf("unknown storage backend %q (supported: %v)", backend, Backends())
	}
	return factory(ctx, path)
}
