// Package grid implements the data-grid core: the page-set planner, the
// bulk cross-page selector, and the Session state container owning the
// pagination cursor, the selection set, and the page cache. The
// presentation layer talks only to a Session and never reaches into the
// cache directly.
package grid

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/articgrid/articgrid/pkg/catalog"
	"github.com/articgrid/articgrid/pkg/logging"
	"github.com/articgrid/articgrid/pkg/pagecache"
)

// DefaultPageSize matches the grid's default rows-per-page.
const DefaultPageSize = 12

// PageFetcher fetches a single page of records from the remote source and
// reports the authoritative total record count.
type PageFetcher interface {
	FetchPage(ctx context.Context, page, size int) (catalog.Page, int, error)
}

// Cursor is the pagination state the grid displays: current page, page
// size, and the total record count reported by the remote source.
type Cursor struct {
	CurrentPage int
	PageSize    int
	Total       int
}

// Config holds Session configuration.
type Config struct {
	// Fetcher retrieves pages from the remote source. Required.
	Fetcher PageFetcher

	// Store is the page cache backend (default: in-memory).
	Store pagecache.Store

	// PageSize is the fixed rows-per-page (default: DefaultPageSize).
	PageSize int

	// MaxConcurrency bounds parallel page fetches during bulk selection.
	MaxConcurrency int

	// FetchTimeout bounds each page fetch within a bulk selection.
	FetchTimeout time.Duration
}

// Session owns the mutable grid state. All mutation goes through its
// methods; interleaved fetch completions are safe, overlapping bulk
// selections are rejected with ErrBusy.
type Session struct {
	mu        sync.Mutex
	store     pagecache.Store
	fetcher   PageFetcher
	cursor    Cursor
	selection []catalog.Record
	busy      bool

	maxConcurrency int
	fetchTimeout   time.Duration
	logger         zerolog.Logger
}

// NewSession creates a Session over the given fetcher and store.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("page fetcher is required")
	}
	if cfg.Store == nil {
		cfg.Store = pagecache.NewMemory()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 5
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}

	return &Session{
		store:          cfg.Store,
		fetcher:        cfg.Fetcher,
		cursor:         Cursor{CurrentPage: 1, PageSize: cfg.PageSize},
		maxConcurrency: cfg.MaxConcurrency,
		fetchTimeout:   cfg.FetchTimeout,
		logger:         logging.NewLogger("grid-session"),
	}, nil
}

// FetchPage returns the page for the given number, from cache when
// present (no network access) and from the remote source otherwise. A
// fetch failure yields an empty page and leaves the cache untouched for
// that number so a later navigation can retry; the error is returned for
// observability but never carries partial state.
func (s *Session) FetchPage(ctx context.Context, page int) (catalog.Page, error) {
	if page < 1 {
		return catalog.Page{}, fmt.Errorf("page must be >= 1 (got %d)", page)
	}

	if p, ok, err := s.store.Get(ctx, page); err != nil {
		// A broken cache degrades to a miss.
		s.logger.Warn().Err(err).Int("page", page).Msg("Page cache read failed")
	} else if ok {
		s.logger.Debug().Int("page", page).Msg("Page cache hit")
		return p, nil
	}

	p, total, err := s.fetcher.FetchPage(ctx, page, s.PageSize())
	if err != nil {
		fetchFailuresTotal.Inc()
		s.logger.Warn().Err(err).Int("page", page).Msg("Page fetch failed")
		return catalog.Page{Number: page}, err
	}

	if err := s.store.Set(ctx, page, p); err != nil {
		s.logger.Warn().Err(err).Int("page", page).Msg("Page cache write failed")
	}
	s.setTotal(total)

	return p, nil
}

// SetPage navigates the cursor to the given page and fetches it. The
// selection is untouched, so it persists across navigation.
func (s *Session) SetPage(ctx context.Context, page int) (catalog.Page, error) {
	if page < 1 {
		page = 1
	}

	s.mu.Lock()
	s.cursor.CurrentPage = page
	s.mu.Unlock()

	return s.FetchPage(ctx, page)
}

// Cursor returns the current pagination cursor.
func (s *Session) Cursor() Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// PageSize returns the fixed page size.
func (s *Session) PageSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.PageSize
}

// Busy reports whether a bulk selection is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Selection returns a copy of the current selection.
func (s *Session) Selection() []catalog.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]catalog.Record, len(s.selection))
	copy(out, s.selection)
	return out
}

// SetSelection replaces the selection wholesale, deduplicated by record
// ID in first-seen order. This is the manual (checkbox/row-click) path;
// no merge with a prior bulk selection is attempted.
func (s *Session) SetSelection(records []catalog.Record) {
	seen := make(map[string]struct{}, len(records))
	deduped := make([]catalog.Record, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		deduped = append(deduped, r)
	}

	s.mu.Lock()
	s.selection = deduped
	s.mu.Unlock()
}

// setTotal records the authoritative total from response metadata.
func (s *Session) setTotal(total int) {
	s.mu.Lock()
	s.cursor.Total = total
	s.mu.Unlock()
}
