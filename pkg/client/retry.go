package client

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for retry operations.
var (
	articRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artic_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	articRetryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "artic_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"error_class"})

	articRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artic_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// maxBackoff caps exponential backoff growth.
const maxBackoff = 30 * time.Second

// backoffMultiplier is the exponential backoff factor.
const backoffMultiplier = 2.0

// retryWithBackoff executes fn with exponential backoff retry logic.
// classify reports the class of the most recent failure so the retry
// decision can follow it. It respects context cancellation and adds
// jitter to spread out concurrent page fetches.
func retryWithBackoff(ctx context.Context, maxAttempts int, initialBackoff time.Duration, fn func() error, classify func() ErrorClass) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				log.Info().
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}

		lastErr = err
		errorClass := classify()

		if !shouldRetry(errorClass) {
			// Client errors return immediately
			return lastErr
		}

		// If this was the last attempt, don't wait
		if attempt >= maxAttempts {
			break
		}

		articRetriesTotal.WithLabelValues(string(errorClass)).Inc()

		// Add jitter (±20% randomness)
		jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
		articRetryBackoffSeconds.WithLabelValues(string(errorClass)).Observe(jitter.Seconds())

		log.Debug().
			Str("error_class", string(errorClass)).
			Int("attempt", attempt).
			Dur("backoff", jitter).
			Msg("Retrying request after backoff")

		select {
		case <-ctx.Done():
			log.Warn().
				Str("error_class", string(errorClass)).
				Int("attempt", attempt).
				Msg("Context cancelled during retry backoff")
			return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-time.After(jitter):
		}

		backoff = time.Duration(float64(backoff) * backoffMultiplier)
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	errorClass := classify()
	articRetryExhaustedTotal.WithLabelValues(string(errorClass)).Inc()
	log.Warn().
		Str("error_class", string(errorClass)).
		Int("max_attempts", maxAttempts).
		Msg("Retry attempts exhausted")

	return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, maxAttempts, lastErr)
}
