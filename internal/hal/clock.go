package hal

import "time"

// SystemClock is the real wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Sleep pauses the calling goroutine.
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }
