package grid

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/articgrid/articgrid/pkg/catalog"
)

// Prometheus metrics for the grid core.
var (
	fetchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "artic_grid_fetch_failures_total",
		Help: "Total page fetches that failed and degraded to an empty page",
	})

	bulkSelectDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "artic_grid_bulk_select_duration_seconds",
		Help:    "Bulk selection duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	bulkPagesPlanned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "artic_grid_bulk_pages_planned",
		Help:    "Number of pages planned per bulk selection",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})

	bulkPartialTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "artic_grid_bulk_partial_total",
		Help: "Bulk selections that completed with one or more failed pages",
	})
)

// Errors returned by BulkSelect.
var (
	// ErrInvalidCount is returned for a zero or negative selection count.
	ErrInvalidCount = errors.New("selection count must be positive")

	// ErrBusy is returned when a bulk selection is already in flight.
	// Overlapping invocations are rejected, not queued.
	ErrBusy = errors.New("bulk selection already in progress")

	// ErrPartialSelection marks a bulk selection that completed with
	// fewer records than requested because one or more page fetches
	// failed. The assembled selection is still applied.
	ErrPartialSelection = errors.New("partial bulk selection")
)

// BulkSelect selects the first desiredCount records of the dataset
// starting at fromPage, spanning as many pages as needed. Missing pages
// are prefetched in parallel; cached pages are never re-fetched. On
// completion the session's selection is replaced with the assembled
// records, in dataset order regardless of fetch completion order.
//
// A page whose fetch fails contributes no records and does not abort the
// batch: the selection is still applied and the error wraps
// ErrPartialSelection naming the failed pages.
func (s *Session) BulkSelect(ctx context.Context, desiredCount, fromPage int) ([]catalog.Record, error) {
	if desiredCount <= 0 {
		return nil, ErrInvalidCount
	}
	if fromPage < 1 {
		fromPage = 1
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.busy = true
	pageSize := s.cursor.PageSize
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	start := time.Now()
	defer func() {
		bulkSelectDuration.Observe(time.Since(start).Seconds())
	}()

	plan := PlanPages(desiredCount, fromPage, pageSize)
	bulkPagesPlanned.Observe(float64(len(plan)))

	s.logger.Info().
		Int("count", desiredCount).
		Int("from_page", fromPage).
		Ints("plan", plan).
		Msg("Starting bulk selection")

	failed := s.prefetch(ctx, plan)

	// Assemble in plan order. Fetch completion order is irrelevant here:
	// every planned page is read back from the cache.
	selection := make([]catalog.Record, 0, desiredCount)
	needed := desiredCount
	for _, page := range plan {
		if needed <= 0 {
			break
		}
		p, ok, err := s.store.Get(ctx, page)
		if err != nil || !ok {
			continue
		}
		take := needed
		if take > p.Len() {
			take = p.Len()
		}
		selection = append(selection, p.Records[:take]...)
		needed -= take
	}

	s.mu.Lock()
	s.selection = selection
	s.mu.Unlock()

	s.logger.Info().
		Int("selected", len(selection)).
		Int("requested", desiredCount).
		Dur("duration", time.Since(start)).
		Msg("Bulk selection complete")

	if len(failed) > 0 {
		bulkPartialTotal.Inc()
		sort.Ints(failed)
		return selection, fmt.Errorf("%w: pages %v failed to fetch", ErrPartialSelection, failed)
	}

	return selection, nil
}

// prefetch fetches every planned page not already cached, all issued
// together through a bounded worker pool and joined before returning.
// It returns the page numbers whose fetch failed.
func (s *Session) prefetch(ctx context.Context, plan []int) []int {
	missing := make([]int, 0, len(plan))
	for _, page := range plan {
		if _, ok, err := s.store.Get(ctx, page); err == nil && ok {
			continue
		}
		missing = append(missing, page)
	}
	if len(missing) == 0 {
		return nil
	}

	pageQueue := make(chan int, len(missing))
	for _, page := range missing {
		pageQueue <- page
	}
	close(pageQueue)

	workers := s.maxConcurrency
	if workers > len(missing) {
		workers = len(missing)
	}

	var mu sync.Mutex
	var failed []int

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for page := range pageQueue {
				select {
				case <-ctx.Done():
					mu.Lock()
					failed = append(failed, page)
					mu.Unlock()
					continue
				default:
				}

				pageCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
				p, total, err := s.fetcher.FetchPage(pageCtx, page, s.PageSize())
				cancel()

				if err != nil {
					fetchFailuresTotal.Inc()
					s.logger.Warn().
						Err(err).
						Int("worker_id", workerID).
						Int("page", page).
						Msg("Prefetch page failed")
					mu.Lock()
					failed = append(failed, page)
					mu.Unlock()
					continue
				}

				if err := s.store.Set(ctx, page, p); err != nil {
					s.logger.Warn().Err(err).Int("page", page).Msg("Page cache write failed")
					mu.Lock()
					failed = append(failed, page)
					mu.Unlock()
					continue
				}
				s.setTotal(total)
			}
		}(i)
	}
	wg.Wait()

	return failed
}
