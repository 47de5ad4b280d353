// Package ultrasonic reads an HC-SR04 style ranging sensor: a short
// trigger pulse starts a measurement and the echo line goes high for as
// long as the sound round-trip took.
package ultrasonic

import (
	"errors"
	"math"
	"time"

	"github.com/andoniskgr/heating-system/internal/hal"
)

const (
	// triggerSettle quiets the trigger line before the pulse.
	triggerSettle = 2 * time.Microsecond

	// triggerPulse is the start-of-measurement pulse width.
	triggerPulse = 10 * time.Microsecond

	// samplePeriod is the echo line polling granularity.
	samplePeriod = 10 * time.Microsecond

	// DefaultEchoTimeout bounds each echo edge wait. 30 ms of pulse
	// width is over five meters of range, well past the sensor's
	// useful limit, so hitting it means the sensor is absent or
	// disconnected rather than the target far away.
	DefaultEchoTimeout = 30 * time.Millisecond

	// cmPerMicrosecond is the speed of sound over two (out and back).
	cmPerMicrosecond = 0.0343 / 2
)

// ErrNoEcho is returned when an echo edge never arrives inside the
// timeout window.
var ErrNoEcho = errors.New("ultrasonic sensor produced no echo")

// Sensor measures distance through a trigger/echo pin pair.
type Sensor struct {
	trigger hal.OutputPin
	echo    hal.InputPin
	clock   hal.Clock

	// EchoTimeout bounds the wait for each echo edge.
	EchoTimeout time.Duration
}

// New returns a Sensor with the default echo timeout.
func New(trigger hal.OutputPin, echo hal.InputPin, clock hal.Clock) *Sensor {
	return &Sensor{
		trigger:     trigger,
		echo:        echo,
		clock:       clock,
		EchoTimeout: DefaultEchoTimeout,
	}
}

// Measure performs one ranging cycle and returns the distance in
// centimeters, rounded to two decimals. A sensor that never raises or
// never drops its echo line yields ErrNoEcho instead of hanging.
func (s *Sensor) Measure() (float64, error) {
	s.trigger.Write(false)
	s.clock.Sleep(triggerSettle)
	s.trigger.Write(true)
	s.clock.Sleep(triggerPulse)
	s.trigger.Write(false)

	echoStart, err := s.waitForEcho(true)
	if err != nil {
		return 0, err
	}
	echoEnd, err := s.waitForEcho(false)
	if err != nil {
		return 0, err
	}

	pulse := echoEnd.Sub(echoStart)
	cm := float64(pulse.Microseconds()) * cmPerMicrosecond
	return math.Round(cm*100) / 100, nil
}

// waitForEcho polls until the echo line reaches level or the timeout
// elapses, returning the time the level was first observed.
func (s *Sensor) waitForEcho(level bool) (time.Time, error) {
	deadline := s.clock.Now().Add(s.EchoTimeout)
	for s.echo.Read() != level {
		if !s.clock.Now().Before(deadline) {
			return time.Time{}, ErrNoEcho
		}
		s.clock.Sleep(samplePeriod)
	}
	return s.clock.Now(), nil
}
