package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDelivery = errors.New("delivery failed")

func run(b *Breaker, outcomes []bool) {
	for _, ok := range outcomes {
		_ = b.Do(func() error {
			if ok {
				return nil
			}
			return errDelivery
		})
	}
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		outcomes  []bool // true = success, false = failure
		wantState State
	}{
		{
			name:      "stays closed on successes",
			cfg:       Config{Interval: time.Minute, Cooldown: time.Minute},
			outcomes:  []bool{true, true, true},
			wantState: StateClosed,
		},
		{
			name:      "stays closed below trip threshold",
			cfg:       Config{Interval: time.Minute, Cooldown: time.Minute, TripAfter: 3},
			outcomes:  []bool{false, false},
			wantState: StateClosed,
		},
		{
			name:      "opens after consecutive failures",
			cfg:       Config{Interval: time.Minute, Cooldown: time.Minute, TripAfter: 3},
			outcomes:  []bool{false, false, false},
			wantState: StateOpen,
		},
		{
			name:      "success resets the failure streak",
			cfg:       Config{Interval: time.Minute, Cooldown: time.Minute, TripAfter: 3},
			outcomes:  []bool{false, false, true, false, false},
			wantState: StateClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("sink", tt.cfg)
			run(b, tt.outcomes)
			assert.Equal(t, tt.wantState, b.State())
		})
	}
}

func TestBreakerShedsWhileOpen(t *testing.T) {
	b := New("sink", Config{Interval: time.Minute, Cooldown: time.Minute, TripAfter: 1})
	run(b, []bool{false})
	require.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called, "open circuit must not invoke the request")
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b := New("sink", Config{
		Interval:  time.Minute,
		Cooldown:  10 * time.Millisecond,
		TripAfter: 1,
		MaxProbes: 1,
	})
	run(b, []bool{false})
	require.Equal(t, StateOpen, b.State())

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, StateHalfOpen, b.State())

	require.NoError(t, b.Do(func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := New("sink", Config{
		Interval:  time.Minute,
		Cooldown:  10 * time.Millisecond,
		TripAfter: 1,
	})
	run(b, []bool{false})

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, StateHalfOpen, b.State())

	_ = b.Do(func() error { return errDelivery })
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerProbeLimit(t *testing.T) {
	b := New("sink", Config{
		Interval:  time.Minute,
		Cooldown:  10 * time.Millisecond,
		TripAfter: 1,
		MaxProbes: 1,
	})
	run(b, []bool{false})
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, StateHalfOpen, b.State())

	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Do(func() error {
			<-release
			return nil
		})
	}()

	// The in-flight probe occupies the quota.
	assert.Eventually(t, func() bool {
		return b.Counts().Requests == 1
	}, time.Second, time.Millisecond)

	err := b.Do(func() error { return nil })
	assert.ErrorIs(t, err, ErrTooManyProbes)

	close(release)
	require.NoError(t, <-done)
}

func TestBreakerStateChangeCallback(t *testing.T) {
	var transitions []string
	b := New("sink", Config{
		Interval:  time.Minute,
		Cooldown:  time.Minute,
		TripAfter: 1,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	run(b, []bool{false})
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestBreakerCountsReset(t *testing.T) {
	b := New("sink", Config{Interval: time.Minute, Cooldown: time.Minute, TripAfter: 10})
	run(b, []bool{true, false, true})

	counts := b.Counts()
	assert.Equal(t, uint32(3), counts.Requests)
	assert.Equal(t, uint32(2), counts.TotalSuccesses)
	assert.Equal(t, uint32(1), counts.TotalFailures)
	assert.Equal(t, uint32(1), counts.ConsecutiveSuccesses)
}
