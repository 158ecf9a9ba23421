package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextState(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	base := LoaRecord{Accepted: true, StartedAt: now.Add(-time.Minute), Expiry: now.Add(time.Hour)}

	assert.Equal(t, LoaActivate, NextState(base, now))

	started := base
	started.Started = true
	assert.Equal(t, LoaUnchanged, NextState(started, now))
	assert.Equal(t, LoaExpire, NextState(started, now.Add(time.Hour)))

	future := base
	future.StartedAt = now.Add(time.Minute)
	assert.Equal(t, LoaUnchanged, NextState(future, now))

	// never started but already past expiry
	assert.Equal(t, LoaExpire, NextState(base, now.Add(2*time.Hour)))

	for name, r := range map[string]LoaRecord{
		"pending": {StartedAt: base.StartedAt, Expiry: base.Expiry},
		"denied":  {Accepted: true, Denied: true, StartedAt: base.StartedAt, Expiry: base.Expiry},
		"expired": {Accepted: true, Expired: true, StartedAt: base.StartedAt, Expiry: base.Expiry},
		"rolled":  {Accepted: true, UserRolled: true, StartedAt: base.StartedAt, Expiry: base.Expiry},
	} {
		assert.Equal(t, LoaUnchanged, NextState(r, now.Add(2*time.Hour)), name)
	}
}
