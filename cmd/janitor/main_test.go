package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventPurgesDefaults(t *testing.T) {
	ps := Event{}.purges()
	require.Len(t, ps, 2)
	assert.Equal(t, "loas", ps[0].name)
	assert.Equal(t, defaultRetentionDays, ps[0].days)
	assert.Equal(t, defaultRetentionDays, ps[1].days)
}

func TestEventPurgesOverrides(t *testing.T) {
	ps := Event{LoaRetentionDays: 30, ShiftRetentionDays: -1}.purges()
	assert.Equal(t, 30, ps[0].days)
	assert.Equal(t, defaultRetentionDays, ps[1].days)
}
