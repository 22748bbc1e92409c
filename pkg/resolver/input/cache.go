// Package input provides dependency providers for the solver: a
// deterministic in-memory provider, a JSON registry catalog adapter and a
// read-through memoization cache shareable across concurrent solves.
package input

import "sync"

// Cache is a concurrent map of immutable values. A lost race to populate a
// key is harmless: values for the same key are interchangeable and the last
// writer wins.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Delete(key K)
	Iterate(func(key K, value V) error) error
}

var _ Cache[string, any] = &MapCache[string, any]{}

type MapCache[K comparable, V any] struct {
	cache map[K]V
	mu    sync.RWMutex
}

func NewMapCache[K comparable, V any]() *MapCache[K, V] {
	return &MapCache[K, V]{
		cache: map[K]V{},
	}
}

func (m *MapCache[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.cache[key]
	return value, ok
}

func (m *MapCache[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[key] = value
}

func (m *MapCache[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, key)
}

func (m *MapCache[K, V]) Iterate(fn func(key K, value V) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for key, value := range m.cache {
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return nil
}
