package common

import "time"

// Freshness TTLs for cached data components.
//
// Staged price artifacts carry no TTL at all: a closed historical window
// never changes, so existence alone makes them permanently fresh.
// Fundamentals are periodically restated and expire.
const (
	FreshnessFundamentals = 24 * time.Hour
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
