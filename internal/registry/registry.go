// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry maps string keys to constructors. Input readers, output
// writers and page modes each build one from an explicit list at startup.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Sentinel errors for the registry package.
var (
	// ErrAlreadyRegistered is returned when registering a duplicate key.
	ErrAlreadyRegistered = errors.New("already registered")

	// ErrNotFound is returned when a key has no entry.
	ErrNotFound = errors.New("not registered")
)

// Registry holds factories of type F by name.
type Registry[F any] struct {
	kind    string
	mu      sync.RWMutex
	entries map[string]F
	order   []string
}

// New creates an empty registry. kind names the entries in error messages
// (e.g. "input format").
func New[F any](kind string) *Registry[F] {
	return &Registry[F]{
		kind:    kind,
		entries: make(map[string]F),
	}
}

// Register adds a factory under name.
func (r *Registry[F]) Register(name string, f F) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%s %q %w", r.kind, name, ErrAlreadyRegistered)
	}
	r.entries[name] = f
	r.order = append(r.order, name)
	return nil
}

// MustRegister is Register for the static startup lists, where a duplicate
// is a programming error.
func (r *Registry[F]) MustRegister(name string, f F) *Registry[F] {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
	return r
}

// Get returns the factory for name.
func (r *Registry[F]) Get(name string) (F, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.entries[name]
	if !ok {
		var zero F
		known := append([]string(nil), r.order...)
		sort.Strings(known)
		return zero, fmt.Errorf("%s %q %w (known: %v)", r.kind, name, ErrNotFound, known)
	}
	return f, nil
}

// Names returns all keys in registration order.
func (r *Registry[F]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
