package ultrasonic

import (
	"errors"
	"testing"
	"time"

	"github.com/andoniskgr/heating-system/internal/hal"
)

// scriptEcho makes the echo pin rise and fall at fixed instants of
// simulated time.
func scriptEcho(clock *hal.SimClock, echo *hal.SimInputPin, riseAfter, pulseWidth time.Duration) {
	start := clock.Now()
	riseAt := start.Add(riseAfter)
	fallAt := riseAt.Add(pulseWidth)
	clock.OnSleep = func(now time.Time) {
		switch {
		case !now.Before(fallAt):
			echo.Set(false)
		case !now.Before(riseAt):
			echo.Set(true)
		}
	}
}

func TestMeasure(t *testing.T) {
	tests := []struct {
		name       string
		pulseWidth time.Duration
		want       float64
	}{
		{"one millisecond pulse", 1000 * time.Microsecond, 17.15},
		{"short range", 580 * time.Microsecond, 9.95},
		{"long range", 10 * time.Millisecond, 171.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := hal.NewSimClock()
			echo := hal.NewSimInputPin(false)
			trigger := &hal.SimOutputPin{}
			scriptEcho(clock, echo, 100*time.Microsecond, tt.pulseWidth)

			s := New(trigger, echo, clock)
			got, err := s.Measure()
			if err != nil {
				t.Fatalf("Measure() failed: %v", err)
			}
			// Polling quantizes the pulse width by one sample on each
			// edge; accept that much error.
			slack := 2 * float64(samplePeriod.Microseconds()) * cmPerMicrosecond
			if diff := got - tt.want; diff < -slack || diff > slack {
				t.Errorf("Measure() = %v cm, want %v ± %v", got, tt.want, slack)
			}
		})
	}
}

func TestMeasureTriggerPulse(t *testing.T) {
	clock := hal.NewSimClock()
	echo := hal.NewSimInputPin(false)
	trigger := &hal.SimOutputPin{}
	scriptEcho(clock, echo, 50*time.Microsecond, 200*time.Microsecond)

	s := New(trigger, echo, clock)
	if _, err := s.Measure(); err != nil {
		t.Fatalf("Measure() failed: %v", err)
	}

	history := trigger.History()
	if len(history) != 3 || history[0] || !history[1] || history[2] {
		t.Errorf("trigger sequence = %v, want [false true false]", history)
	}
}

func TestMeasureNoRisingEdge(t *testing.T) {
	clock := hal.NewSimClock()
	echo := hal.NewSimInputPin(false)
	s := New(&hal.SimOutputPin{}, echo, clock)

	start := clock.Now()
	_, err := s.Measure()
	if !errors.Is(err, ErrNoEcho) {
		t.Fatalf("Measure() error = %v, want ErrNoEcho", err)
	}
	if waited := clock.Now().Sub(start); waited > s.EchoTimeout+time.Millisecond {
		t.Errorf("waited %v for a dead sensor, want about %v", waited, s.EchoTimeout)
	}
}

func TestMeasureEchoStuckHigh(t *testing.T) {
	clock := hal.NewSimClock()
	echo := hal.NewSimInputPin(true)
	s := New(&hal.SimOutputPin{}, echo, clock)

	if _, err := s.Measure(); !errors.Is(err, ErrNoEcho) {
		t.Errorf("Measure() error = %v, want ErrNoEcho", err)
	}
}
