package discord

import (
	"time"

	"github.com/sasha-s/go-deadlock"
)

// sweepAt is the map size at which expired cooldowns are dropped.
const sweepAt = 1024

// userLimiter enforces a per-user cooldown between command invocations.
type userLimiter struct {
	mu     deadlock.Mutex
	until  map[string]time.Time
	window time.Duration
	now    func() time.Time
}

func newUserLimiter(window time.Duration) *userLimiter {
	return &userLimiter{until: make(map[string]time.Time), window: window, now: time.Now}
}

// Allow starts a new cooldown for userID and reports true, or reports false
// with the time left on the running cooldown.
func (l *userLimiter) Allow(userID string) (bool, time.Duration) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if until, ok := l.until[userID]; ok && now.Before(until) {
		return false, until.Sub(now)
	}
	if len(l.until) >= sweepAt {
		for id, until := range l.until {
			if !now.Before(until) {
				delete(l.until, id)
			}
		}
	}
	l.until[userID] = now.Add(l.window)
	return true, 0
}

func (l *userLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.until)
}
