package storage

import (
	"context"
	"path"
	"sort"
	"sync"
)

// Memory is an in-process DocumentStore. It backs dry runs and tests.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]bool
	documents   map[string]string
	writes      int
}

func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]bool),
		documents:   make(map[string]string),
	}
}

func (m *Memory) Exists(_ context.Context, p string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p = path.Clean(p)
	if m.collections[p] {
		return true, nil
	}
	_, ok := m.documents[p]
	return ok, nil
}

func (m *Memory) CreateCollection(_ context.Context, p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[path.Clean(p)] = true
	return nil
}

func (m *Memory) Write(_ context.Context, p string, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[path.Clean(p)] = content
	m.writes++
	return nil
}

// Document returns the stored content of a document.
func (m *Memory) Document(p string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.documents[path.Clean(p)]
	return content, ok
}

// Paths returns the stored document paths in lexical order.
func (m *Memory) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.documents))
	for p := range m.documents {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Writes returns the number of Write calls, including overwrites.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
