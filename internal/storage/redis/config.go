package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings for different entity types
	PlayerTTL  time.Duration
	SessionTTL time.Duration
	// BindingTTL of zero keeps room bindings until the player leaves.
	// Bindings are not refreshed, so a non-zero value can expire a seated player's binding.
	BindingTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		PlayerTTL:    7 * 24 * time.Hour,
		SessionTTL:   7 * 24 * time.Hour,
		BindingTTL:   0,
	}
}
