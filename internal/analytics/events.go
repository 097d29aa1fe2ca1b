// Package analytics tracks browse behaviour. Handlers push BrowseEvents
// into a buffered collector that publishes them to Kafka; an aggregator
// consumes the topic and serves rolled-up stats (latency percentiles, top
// queries, zero-result queries).
package analytics

import "time"

type EventType string

const (
	EventBrowse     EventType = "browse"
	EventCacheHit   EventType = "cache_hit"
	EventCacheMiss  EventType = "cache_miss"
	EventZeroResult EventType = "zero_result"
)

// BrowseEvent captures one browse request and its outcome.
type BrowseEvent struct {
	Type        EventType `json:"type"`
	Query       string    `json:"query"`
	Topics      []string  `json:"topics,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Collection  string    `json:"collection,omitempty"`
	Mode        string    `json:"mode"`
	ShownCount  int       `json:"shown_count"`
	TotalCount  int       `json:"total_count"`
	LatencyMs   int64     `json:"latency_ms"`
	CacheHit    bool      `json:"cache_hit"`
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id"`
}
