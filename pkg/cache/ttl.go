package cache

import "time"

// Freshness tiers. Pick the tier that matches how often the underlying
// resource changes; the cache honors whatever TTL it is given.
const (
	TTLShort    = time.Minute
	TTLMedium   = 5 * time.Minute
	TTLLong     = 15 * time.Minute
	TTLVeryLong = time.Hour

	// DefaultTTL applies when a zero TTL is passed.
	DefaultTTL = TTLMedium
)
