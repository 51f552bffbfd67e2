package ai

import (
	"strings"
	"time"
)

// RetryConfig controls the retry loop of the HTTP-backed providers.
type RetryConfig struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the retry policy used when the caller passes a
// zero config.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        2,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

func (rc RetryConfig) withDefaults() RetryConfig {
	def := DefaultRetryConfig()
	if rc.MaxRetries <= 0 {
		rc.MaxRetries = def.MaxRetries
	}
	if rc.InitialDelay <= 0 {
		rc.InitialDelay = def.InitialDelay
	}
	if rc.MaxDelay <= 0 {
		rc.MaxDelay = def.MaxDelay
	}
	if rc.BackoffMultiplier <= 1 {
		rc.BackoffMultiplier = def.BackoffMultiplier
	}
	return rc
}

// nextDelay advances the backoff delay, capped at MaxDelay.
func (rc RetryConfig) nextDelay(delay time.Duration) time.Duration {
	delay = time.Duration(float64(delay) * rc.BackoffMultiplier)
	if delay > rc.MaxDelay {
		delay = rc.MaxDelay
	}
	return delay
}

// isQuotaError reports whether a backend error message indicates an
// exhausted quota. Quota errors are permanent for the billing period, so
// retrying them only burns the remaining attempts.
func isQuotaError(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "quota") || strings.Contains(lower, "exceeded")
}
