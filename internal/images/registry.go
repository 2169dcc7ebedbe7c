// Package images resolves topic keywords to illustration references and
// tracks previously issued identifiers so no upstream image is used twice
// within the registry's scope.
package images

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Registry is the durable used-image set. No identifier present in the
// registry is issued again for the registry's lifetime; the only shrink
// operation is an explicit Reset between campaigns.
type Registry interface {
	Contains(ctx context.Context, id string) bool
	Add(ctx context.Context, id string) error
	Flush(ctx context.Context) error
	Reset(ctx context.Context) error
}

// MemoryRegistry is an in-process registry scoped to a single run. It
// also backs tests for the durable implementations' callers.
type MemoryRegistry struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewMemoryRegistry creates an empty run-scoped registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{ids: make(map[string]struct{})}
}

func (m *MemoryRegistry) Contains(_ context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[id]
	return ok
}

func (m *MemoryRegistry) Add(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[id] = struct{}{}
	return nil
}

func (m *MemoryRegistry) Flush(context.Context) error { return nil }

func (m *MemoryRegistry) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = make(map[string]struct{})
	return nil
}

// FileRegistry persists issued identifiers to an append-only,
// line-oriented file. Every Add is written and synced immediately so a
// crash mid-batch leaves the dedup invariant intact for the next run.
type FileRegistry struct {
	mu   sync.Mutex
	path string
	file *os.File
	ids  map[string]struct{}
}

// OpenFileRegistry loads the identifier set from path, creating the
// file if it does not exist, and keeps it open for appends.
func OpenFileRegistry(path string) (*FileRegistry, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open registry file: %w", err)
	}

	ids := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			ids[id] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		f.Close()
		return nil, fmt.Errorf("read registry file: %w", err)
	}

	return &FileRegistry{path: path, file: f, ids: ids}, nil
}

func (r *FileRegistry) Contains(_ context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[id]
	return ok
}

func (r *FileRegistry) Add(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ids[id]; ok {
		return nil
	}
	if _, err := fmt.Fprintln(r.file, id); err != nil {
		return fmt.Errorf("append registry entry: %w", err)
	}
	if err := r.file.Sync(); err != nil {
		return fmt.Errorf("sync registry file: %w", err)
	}
	r.ids[id] = struct{}{}
	return nil
}

func (r *FileRegistry) Flush(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Sync()
}

// Reset truncates the registry file, clearing the campaign's used set.
func (r *FileRegistry) Reset(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate registry file: %w", err)
	}
	if _, err := r.file.Seek(0, 0); err != nil {
		return fmt.Errorf("rewind registry file: %w", err)
	}
	r.ids = make(map[string]struct{})
	return nil
}

// Close releases the underlying file handle.
func (r *FileRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}
