package models

import "time"

// FAQEntry is a cached answer for a frequently asked question. Entries are
// persisted in Badger and invalidated lazily on read once the TTL elapses.
type FAQEntry struct {
	Question string    `json:"question" badgerhold:"key"`
	Answer   string    `json:"answer"`
	CachedAt time.Time `json:"cached_at"`
	TTLDays  int       `json:"ttl_days"`
}

// Expired reports whether the entry's TTL has elapsed at the given time
func (e *FAQEntry) Expired(now time.Time) bool {
	ttl := time.Duration(e.TTLDays) * 24 * time.Hour
	return !now.Before(e.CachedAt.Add(ttl))
}
