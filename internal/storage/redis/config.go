package redis

import (
	"time"

	"github.com/mcoot/scorekeeper/internal/dependencies/clock"
)

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Namespace prefixes every key written by the ledger
	Namespace string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// Timeout bounds each ledger read and write
	Timeout time.Duration

	// Clock stamps saved_at in the ledger metadata (optional)
	// If nil, the system clock is used
	Clock clock.Clock
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		Namespace:    "scorekeeper",
		PoolSize:     10,
		MinIdleConns: 2,
		Timeout:      5 * time.Second,
	}
}
