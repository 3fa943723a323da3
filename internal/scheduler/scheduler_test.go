package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tillpoint/tillpoint-api/internal/application/service"
	"github.com/tillpoint/tillpoint-api/internal/config"
)

// manualConfig makes both sweeps immediate no-ops, so the scheduler can run
// against a shift service with no repositories behind it.
func manualConfig() config.ShiftConfig {
	return config.ShiftConfig{
		Mode:                     "manual",
		DailyStartTime:           "08:00",
		DailyEndTime:             "23:00",
		InactivityTimeoutMinutes: 240,
	}
}

func newTestScheduler() *Scheduler {
	svc := service.NewShiftService(nil, nil, nil, manualConfig())
	s := New(svc, manualConfig())
	s.autoCloseInterval = 5 * time.Millisecond
	s.inactivityInterval = 5 * time.Millisecond
	return s
}

func TestScheduler_StartStop(t *testing.T) {
	s := newTestScheduler()
	s.Start()

	// let a few ticks fire before stopping
	time.Sleep(25 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestScheduler_StopWithoutTicks(t *testing.T) {
	s := newTestScheduler()
	s.autoCloseInterval = time.Hour
	s.inactivityInterval = time.Hour
	s.Start()
	s.Stop()
}

func TestRunTick_RecoversFromPanic(t *testing.T) {
	s := newTestScheduler()

	assert.NotPanics(t, func() {
		s.runTick("panicky", func(ctx context.Context) error {
			panic("boom")
		})
	})
}

func TestRunTick_BoundsDeadlineAndSwallowsErrors(t *testing.T) {
	s := newTestScheduler()

	var gotDeadline bool
	s.runTick("failing", func(ctx context.Context) error {
		_, gotDeadline = ctx.Deadline()
		return errors.New("sweep failed")
	})
	require.True(t, gotDeadline)
}
