package shared

import (
	"context"
	"time"
)

// SubmissionStore remembers client submission keys so that a double-tapped
// kiosk or intake form is applied once
type SubmissionStore interface {
	// Claim records the key with a TTL.
	// Returns true if the key was newly claimed, false if it was already seen
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release forgets a key so the submission can be retried
	Release(ctx context.Context, key string) error

	// Seen checks if a key is currently claimed
	Seen(ctx context.Context, key string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// SubmissionConfig holds configuration for submission de-duplication
type SubmissionConfig struct {
	// TTL is how long a claimed key blocks a repeat submission
	TTL time.Duration

	// Enabled turns the check on
	Enabled bool

	// Header is the request header carrying the key
	Header string
}

// DefaultSubmissionConfig returns the default configuration
func DefaultSubmissionConfig() SubmissionConfig {
	return SubmissionConfig{
		TTL:     10 * time.Minute,
		Enabled: true,
		Header:  "Idempotency-Key",
	}
}
