// Package pagecache caches fetched artwork pages keyed by page number.
//
// The in-memory store is the default for an interactive session: it is
// append-only, never evicts, and a page number present in it is
// authoritative for the rest of the session. A Redis-backed store is
// available for long-running shared deployments.
package pagecache

import (
	"context"
	"sync"

	"github.com/articgrid/articgrid/pkg/catalog"
)

// Store is the page cache contract. Implementations must treat a stored
// page as immutable.
type Store interface {
	// Get returns the cached page and whether it was present.
	Get(ctx context.Context, page int) (catalog.Page, bool, error)

	// Set stores a page under its number. Re-setting an existing page
	// number is not expected and implementations may ignore it.
	Set(ctx context.Context, page int, p catalog.Page) error

	// Len returns the number of cached pages.
	Len(ctx context.Context) (int, error)
}

// Memory is the in-memory page store.
type Memory struct {
	mu    sync.RWMutex
	pages map[int]catalog.Page
}

// NewMemory creates an empty in-memory page store.
func NewMemory() *Memory {
	return &Memory{
		pages: make(map[int]catalog.Page),
	}
}

// Get returns the cached page for the given number.
func (m *Memory) Get(_ context.Context, page int) (catalog.Page, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.pages[page]
	if !ok {
		CacheMisses.Inc()
		return catalog.Page{}, false, nil
	}

	CacheHits.WithLabelValues("memory").Inc()
	return p, true, nil
}

// Set stores a page. A page number already present stays untouched: the
// first stored copy is authoritative for the session.
func (m *Memory) Set(_ context.Context, page int, p catalog.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pages[page]; ok {
		return nil
	}
	m.pages[page] = p
	CacheSize.WithLabelValues("memory").Inc()
	return nil
}

// Len returns the number of cached pages.
func (m *Memory) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pages), nil
}
