package tracker

import (
	"context"
	"time"

	"github.com/sasha-s/go-deadlock"
)

// MemInfractionStore keeps infraction counts in process memory. Counts are
// lost on restart.
type MemInfractionStore struct {
	mu     deadlock.Mutex
	counts map[string]map[string]int
}

func NewMemInfractionStore() *MemInfractionStore {
	return &MemInfractionStore{counts: make(map[string]map[string]int)}
}

func (s *MemInfractionStore) Increment(_ context.Context, guildID, username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, ok := s.counts[guildID]
	if !ok {
		users = make(map[string]int)
		s.counts[guildID] = users
	}
	users[username]++
	return users[username], nil
}

func (s *MemInfractionStore) Get(_ context.Context, guildID, username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[guildID][username], nil
}

func (s *MemInfractionStore) Reset(_ context.Context, guildID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, ok := s.counts[guildID]
	if !ok {
		return nil
	}
	delete(users, username)
	if len(users) == 0 {
		delete(s.counts, guildID)
	}
	return nil
}

// Cleanup drops every tracked username of the guild that is not in active.
func (s *MemInfractionStore) Cleanup(_ context.Context, guildID string, active map[string]struct{}) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, ok := s.counts[guildID]
	if !ok {
		return nil, nil
	}
	var removed []string
	for u := range users {
		if _, ok := active[u]; !ok {
			delete(users, u)
			removed = append(removed, u)
		}
	}
	if len(users) == 0 {
		delete(s.counts, guildID)
	}
	return removed, nil
}

type throttleEntry struct {
	count int
	last  time.Time
}

// MemThrottleStore is a time-windowed notice counter keyed by subject.
type MemThrottleStore struct {
	mu      deadlock.Mutex
	entries map[string]throttleEntry
}

func NewMemThrottleStore() *MemThrottleStore {
	return &MemThrottleStore{entries: make(map[string]throttleEntry)}
}

func (s *MemThrottleStore) Bump(_ context.Context, subject string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entries[subject]
	e.count++
	e.last = now
	s.entries[subject] = e
	return e.count, nil
}

func (s *MemThrottleStore) Remove(_ context.Context, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, subject)
	return nil
}

// Purge evicts entries last bumped before olderThan.
func (s *MemThrottleStore) Purge(_ context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, e := range s.entries {
		if e.last.Before(olderThan) {
			delete(s.entries, k)
			n++
		}
	}
	return n, nil
}

// Len is the number of tracked subjects.
func (s *MemThrottleStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
