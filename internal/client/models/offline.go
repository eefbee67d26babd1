package models

import (
	"encoding/json"
	"time"
)

// OutboundRequest is a mutating call recorded while the backend was
// unreachable. RetryCount grows by one per failed replay.
type OutboundRequest struct {
	ID         string          `json:"id"`
	Endpoint   string          `json:"endpoint"`
	Method     string          `json:"method"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	RetryCount int             `json:"retry_count"`
}

// CacheEntry is one read-through cache record.
type CacheEntry struct {
	Key      string          `json:"key"`
	Data     json.RawMessage `json:"data"`
	StoredAt time.Time       `json:"stored_at"`
	TTL      time.Duration   `json:"ttl"`
}

// Expired reports whether more than TTL has elapsed since StoredAt.
func (e *CacheEntry) Expired(now time.Time) bool {
	return now.Sub(e.StoredAt) > e.TTL
}
