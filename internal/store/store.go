// Package store defines the durable key-value contract the collection is
// persisted through, and an in-memory implementation of it.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnavailable wraps every failure of the underlying store.
var ErrUnavailable = errors.New("store unavailable")

// KV is a durable key-value store holding opaque values.
type KV interface {
	// Get returns the value stored at key. ok is false when the key is unset.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// Memory is a process-local KV. Values are copied in and out.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
	fail error
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Fail makes every subsequent call return err wrapped in ErrUnavailable.
// A nil err restores normal operation.
func (m *Memory) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.fail != nil {
		return nil, false, fmt.Errorf("%w: get %s: %v", ErrUnavailable, key, m.fail)
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return fmt.Errorf("%w: set %s: %v", ErrUnavailable, key, m.fail)
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Ping(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.fail != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, m.fail)
	}
	return nil
}
