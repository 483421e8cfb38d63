package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory keeps documents in a map. It is the default backend and the one
// tests use.
type Memory struct {
	mu   sync.Mutex
	docs map[string][]byte
	hub  *hub
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte), hub: newHub()}
}

func (m *Memory) Get(_ context.Context, path string) ([]byte, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.docs[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return clone(b), nil
}

func (m *Memory) Set(_ context.Context, path string, value []byte) error {
	if err := validatePath(path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(path, value)
	return nil
}

func (m *Memory) Update(_ context.Context, path string, fn UpdateFunc) error {
	if err := validatePath(path); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.docs[path]
	if ok {
		cur = clone(cur)
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	m.put(path, next)
	return nil
}

// put must be called with m.mu held.
func (m *Memory) put(path string, value []byte) {
	if value == nil {
		delete(m.docs, path)
	} else {
		m.docs[path] = clone(value)
	}
	m.hub.publish(path, clone(value))
}

func (m *Memory) Subscribe(ctx context.Context, path string) (<-chan []byte, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hub.subscribe(ctx, path, clone(m.docs[path]))
}

func (m *Memory) Close() error {
	m.hub.close()
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
