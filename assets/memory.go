package assets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrObjectExists is returned by backends when a non-upsert write targets an
// existing object.
var ErrObjectExists = errors.New("object already exists")

// Call is one recorded backend operation.
type Call struct {
	Op     string // "put" or "remove"
	Bucket string
	Paths  []string
}

// MemoryBackend keeps objects in memory and records every call. It backs
// tests and the "memory" asset backend.
type MemoryBackend struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	calls   []Call

	// PutErr and RemoveErr, when set, are returned by the next calls.
	PutErr    error
	RemoveErr error
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func memKey(bucket, path string) string { return bucket + "/" + path }

// Put implements Backend.
func (m *MemoryBackend) Put(_ context.Context, bucket, path string, data []byte, contentType string, upsert bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: "put", Bucket: bucket, Paths: []string{path}})
	if m.PutErr != nil {
		return m.PutErr
	}
	k := memKey(bucket, path)
	if _, ok := m.objects[k]; ok && !upsert {
		return fmt.Errorf("%s: %w", k, ErrObjectExists)
	}
	m.objects[k] = append([]byte(nil), data...)
	m.types[k] = contentType
	return nil
}

// Remove implements Backend. Missing objects are ignored.
func (m *MemoryBackend) Remove(_ context.Context, bucket string, paths ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: "remove", Bucket: bucket, Paths: append([]string(nil), paths...)})
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	for _, p := range paths {
		k := memKey(bucket, p)
		delete(m.objects, k)
		delete(m.types, k)
	}
	return nil
}

// Get returns a stored object.
func (m *MemoryBackend) Get(bucket, path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[memKey(bucket, path)]
	return data, ok
}

// ContentType returns the content type recorded for an object.
func (m *MemoryBackend) ContentType(bucket, path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.types[memKey(bucket, path)]
}

// Keys lists stored objects as "bucket/path", sorted.
func (m *MemoryBackend) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Calls returns a copy of the call log.
func (m *MemoryBackend) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Removed lists every path passed to Remove for bucket.
func (m *MemoryBackend) Removed(bucket string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, c := range m.calls {
		if c.Op == "remove" && c.Bucket == bucket {
			out = append(out, c.Paths...)
		}
	}
	return out
}
