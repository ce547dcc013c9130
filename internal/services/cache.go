package services

import (
	"strings"
	"sync"
	"time"

	"attendance-tracker/internal/domain"
)

// ReportCache is a small in-process TTL cache for month query results.
// Reads stay lock-free at the storage layer; the cache only bounds how
// often the same month is re-aggregated. Entries are invalidated on any
// write for the user, so staleness never exceeds the TTL and usually
// resolves immediately.
type ReportCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	records   []domain.AttendanceRecord
	expiresAt time.Time
}

// NewReportCache creates a cache with the given entry TTL.
func NewReportCache(ttl time.Duration) *ReportCache {
	return &ReportCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached month result, or nil when absent or expired.
func (c *ReportCache) Get(userID, period string) []domain.AttendanceRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[cacheKey(userID, period)]
	if !ok || c.now().After(entry.expiresAt) {
		return nil
	}

	// Callers get a deep copy so cached rows can never be mutated in
	// place, not even through the nested session and break slices.
	return cloneRecords(entry.records)
}

// Set stores a month result for the TTL window.
func (c *ReportCache) Set(userID, period string, records []domain.AttendanceRecord) {
	stored := cloneRecords(records)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(userID, period)] = cacheEntry{
		records:   stored,
		expiresAt: c.now().Add(c.ttl),
	}
}

// InvalidateUser drops every cached month for the user.
func (c *ReportCache) InvalidateUser(userID string) {
	prefix := userID + "|"

	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

func cacheKey(userID, period string) string {
	return userID + "|" + period
}

// cloneRecords copies records down to the break and task level. Both Set
// and Get clone, so neither the caller's slice nor the cached one can leak
// into the other.
func cloneRecords(records []domain.AttendanceRecord) []domain.AttendanceRecord {
	cloned := make([]domain.AttendanceRecord, len(records))
	for i, record := range records {
		cloned[i] = record
		cloned[i].Sessions = cloneSessions(record.Sessions)
	}
	return cloned
}

func cloneSessions(sessions []domain.WorkSession) []domain.WorkSession {
	if sessions == nil {
		return nil
	}
	cloned := make([]domain.WorkSession, len(sessions))
	for i, session := range sessions {
		cloned[i] = session
		if session.ClockOut != nil {
			out := *session.ClockOut
			cloned[i].ClockOut = &out
		}
		if session.Breaks != nil {
			breaks := make([]domain.Break, len(session.Breaks))
			for j, brk := range session.Breaks {
				breaks[j] = brk
				if brk.End != nil {
					end := *brk.End
					breaks[j].End = &end
				}
			}
			cloned[i].Breaks = breaks
		}
		if session.Tasks != nil {
			tasks := make([]domain.TaskAnnotation, len(session.Tasks))
			for j, task := range session.Tasks {
				tasks[j] = task
				if task.Hours != nil {
					hours := *task.Hours
					tasks[j].Hours = &hours
				}
			}
			cloned[i].Tasks = tasks
		}
	}
	return cloned
}
