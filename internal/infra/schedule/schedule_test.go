package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryRunsOnStart(t *testing.T) {
	s := New(nil)
	ran := make(chan struct{}, 1)
	require.NoError(t, s.Every("probe", time.Hour, func(context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))
	assert.Equal(t, 1, s.Len())

	s.Start(context.Background())
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
}

func TestEveryRejectsBadInterval(t *testing.T) {
	s := New(nil)
	assert.Error(t, s.Every("zero", 0, func(context.Context) {}))
	assert.Zero(t, s.Len())
}

func TestPanickingJobIsRecovered(t *testing.T) {
	s := New(nil)
	var calls atomic.Int32
	done := make(chan struct{})
	require.NoError(t, s.Every("boom", time.Hour, func(context.Context) {
		if calls.Add(1) == 1 {
			close(done)
		}
		panic("boom")
	}))
	s.Start(context.Background())
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
}
