// Package client provides the artworks API HTTP client with retry,
// error classification, and request metrics.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/articgrid/articgrid/pkg/catalog"
)

// DefaultBaseURL is the public Art Institute of Chicago API.
const DefaultBaseURL = "https://api.artic.edu/api/v1"

// listingFields limits the listing payload to the columns the grid shows.
const listingFields = "id,title,place_of_origin,artist_display,inscriptions,date_start,date_end"

// Prometheus metrics for artworks API operations.
var (
	articRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artic_requests_total",
		Help: "Total artworks API requests by status",
	}, []string{"status"})

	articRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "artic_request_duration_seconds",
		Help:    "Artworks API request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	articErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artic_errors_total",
		Help: "Total artworks API errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents malformed response bodies.
	ErrorClassDecode ErrorClass = "decode"
)

// Client is the artworks API client.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the artworks API (default: DefaultBaseURL).
	BaseURL string

	// User-Agent header sent with every request.
	// Format: "AppName/Version (contact@example.com)"
	UserAgent string

	// Timeout per HTTP request.
	Timeout time.Duration

	// Retry
	MaxRetries     int
	InitialBackoff time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		UserAgent:      userAgent,
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
	}
}

// New creates a new artworks API client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 1 * time.Second
	}

	logger := log.With().Str("component", "artic-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// FetchPage fetches one page of artwork records at the given page size.
// It returns the normalized page and the authoritative total record count
// from the response metadata.
func (c *Client) FetchPage(ctx context.Context, page, size int) (catalog.Page, int, error) {
	if page < 1 {
		return catalog.Page{}, 0, fmt.Errorf("page must be >= 1 (got %d)", page)
	}
	if size < 1 {
		return catalog.Page{}, 0, fmt.Errorf("page size must be >= 1 (got %d)", size)
	}

	startTime := time.Now()
	defer func() {
		articRequestDuration.WithLabelValues("/artworks").Observe(time.Since(startTime).Seconds())
	}()

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(size))
	query.Set("fields", listingFields)
	reqURL := c.config.BaseURL + "/artworks?" + query.Encode()

	var resp catalog.ListingResponse
	var errClass ErrorClass

	retryErr := retryWithBackoff(ctx, c.config.MaxRetries, c.config.InitialBackoff, func() error {
		body, status, reqErr := c.do(ctx, reqURL)
		if reqErr != nil {
			errClass = ErrorClassNetwork
			articErrorsTotal.WithLabelValues(string(errClass)).Inc()
			articRequestsTotal.WithLabelValues("network_error").Inc()
			c.logger.Warn().Err(reqErr).Int("page", page).Msg("Artworks request failed")
			return reqErr
		}

		if status >= 400 {
			errClass = classifyStatus(status)
			articErrorsTotal.WithLabelValues(string(errClass)).Inc()
			articRequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()

			c.logger.Warn().
				Int("page", page).
				Int("status", status).
				Str("error_class", string(errClass)).
				Msg("Artworks request error")

			return &APIError{
				StatusCode: status,
				ErrorClass: errClass,
				Message:    http.StatusText(status),
			}
		}

		// Decode inside the retry loop so a truncated body from a flaky
		// proxy gets another attempt.
		if err := json.Unmarshal(body, &resp); err != nil {
			errClass = ErrorClassDecode
			articErrorsTotal.WithLabelValues(string(errClass)).Inc()
			c.logger.Warn().Err(err).Int("page", page).Msg("Artworks response decode failed")
			return &APIError{
				StatusCode: status,
				ErrorClass: errClass,
				Message:    "malformed response body",
				Err:        err,
			}
		}

		articRequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
		return nil
	}, func() ErrorClass {
		return errClass
	})

	if retryErr != nil {
		return catalog.Page{}, 0, retryErr
	}

	c.logger.Debug().
		Int("page", page).
		Int("size", size).
		Int("records", len(resp.Data)).
		Int("total", resp.Total()).
		Dur("duration", time.Since(startTime)).
		Msg("Fetched artworks page")

	return resp.ToPage(page), resp.Total(), nil
}

// do executes one GET request and returns the body and status code.
func (c *Client) do(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	return body, resp.StatusCode, nil
}

// classifyStatus categorizes an HTTP error status for observability and retry.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
