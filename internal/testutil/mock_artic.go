// Package testutil provides testing utilities for the articgrid core.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockArtic is a configurable mock artworks API server backed by a
// deterministic dataset of sequential records. It tracks request counts
// per page so tests can assert that cached pages never hit the network.
type MockArtic struct {
	server *httptest.Server
	mu     sync.RWMutex

	total     int
	failPages map[int]int
	brokePage map[int]bool
	delay     time.Duration

	// Tracking
	requestCount int
	pageRequests map[int]int
}

// NewMockArtic creates a mock server over a dataset of total records.
// Record at 0-based dataset index i has ID strconv.Itoa(i+1).
func NewMockArtic(total int) *MockArtic {
	mock := &MockArtic{
		total:        total,
		failPages:    make(map[int]int),
		brokePage:    make(map[int]bool),
		pageRequests: make(map[int]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock server base URL (the API root).
func (m *MockArtic) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockArtic) Close() {
	m.server.Close()
}

// Reset clears tracking counters and failure injection.
func (m *MockArtic) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.pageRequests = make(map[int]int)
	m.failPages = make(map[int]int)
	m.brokePage = make(map[int]bool)
}

// FailPage makes requests for the given page return the given status.
func (m *MockArtic) FailPage(page, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPages[page] = status
}

// BreakPage makes requests for the given page return a malformed body.
func (m *MockArtic) BreakPage(page int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.brokePage[page] = true
}

// SetDelay adds a fixed delay before every response.
func (m *MockArtic) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// RequestCount returns the total number of requests served.
func (m *MockArtic) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// PageRequestCount returns the number of requests served for one page.
func (m *MockArtic) PageRequestCount(page int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pageRequests[page]
}

// IDAt returns the record ID at the given 0-based dataset index.
func IDAt(index int) string {
	return strconv.Itoa(index + 1)
}

func (m *MockArtic) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/artworks" {
		http.NotFound(w, r)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 12
	}

	m.mu.Lock()
	m.requestCount++
	m.pageRequests[page]++
	failStatus := m.failPages[page]
	broken := m.brokePage[page]
	delay := m.delay
	total := m.total
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	w.Header().Set("Content-Type", "application/json")

	if failStatus != 0 {
		w.WriteHeader(failStatus)
		fmt.Fprintf(w, `{"error": %q}`, http.StatusText(failStatus))
		return
	}

	if broken {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"pagination": {`)
		return
	}

	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	data := make([]map[string]any, 0, end-start)
	for i := start; i < end; i++ {
		rec := map[string]any{
			"id":              i + 1,
			"title":           fmt.Sprintf("Artwork %d", i+1),
			"place_of_origin": "Chicago",
			"artist_display":  fmt.Sprintf("Artist %d", i+1),
			"inscriptions":    nil,
			"date_start":      1900 + i%100,
			"date_end":        1901 + i%100,
		}
		// Every third record has no year range, mirroring real data gaps.
		if i%3 == 0 {
			rec["date_start"] = nil
			rec["date_end"] = nil
		}
		data = append(data, rec)
	}

	totalPages := (total + limit - 1) / limit
	resp := map[string]any{
		"pagination": map[string]any{
			"total":        total,
			"limit":        limit,
			"current_page": page,
			"total_pages":  totalPages,
		},
		"data": data,
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
