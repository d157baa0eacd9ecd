package notifier

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// entry is a job's last observed status with the time it was last confirmed.
type entry struct {
	status string
	seenAt time.Time
}

// State is the thread-safe last-seen-status map, keyed by job ID. A
// background goroutine (Run) evicts entries for jobs that have not appeared
// in a poll window within the retention period, so the map stays bounded
// over long uptimes even though jobs never announce their disappearance.
type State struct {
	mu        sync.Mutex
	data      map[string]*entry
	retention time.Duration
	now       func() time.Time // injectable for deterministic tests
}

// NewState creates a State with the given retention period.
func NewState(retention time.Duration) *State {
	return &State{
		data:      make(map[string]*entry),
		retention: retention,
		now:       time.Now,
	}
}

// Observe records status for jobID and reports whether it differs from the
// previous observation. The first observation of a job always reports true.
// Re-observing an unchanged status still refreshes the retention clock.
func (s *State) Observe(jobID, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.data[jobID]
	if ok && prev.status == status {
		prev.seenAt = s.now()
		return false
	}
	s.data[jobID] = &entry{status: status, seenAt: s.now()}
	return true
}

// Len returns the number of tracked jobs.
func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Evict removes entries last seen before now minus the retention period.
// It returns the number of entries removed.
func (s *State) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.retention)
	removed := 0
	for id, e := range s.data {
		if !e.seenAt.After(cutoff) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Run starts the background eviction loop. It ticks at half the retention
// interval (minimum 1 second). Run blocks until ctx is cancelled.
func (s *State) Run(ctx context.Context) {
	interval := s.retention / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("notifier: evicted stale job statuses", "count", n)
			}
		}
	}
}
