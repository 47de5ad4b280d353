package hal

import (
	"fmt"
	"sync"
	"time"
)

// SimClock is a fake clock whose time only moves when Sleep is called.
// Polling loops written against Clock run instantly under test while still
// observing realistic deadlines.
type SimClock struct {
	mu  sync.Mutex
	now time.Time

	// OnSleep, if set, is invoked after each Sleep with the new time.
	// Tests use it to flip pin levels at a chosen instant.
	OnSleep func(now time.Time)
}

// NewSimClock returns a SimClock starting at a fixed, arbitrary epoch.
func NewSimClock() *SimClock {
	return &SimClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the simulated time.
func (c *SimClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances the simulated time by d.
func (c *SimClock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	hook := c.OnSleep
	c.mu.Unlock()

	if hook != nil {
		hook(now)
	}
}

// Advance moves the clock forward without a Sleep call.
func (c *SimClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// SimInputPin is a scriptable input line.
type SimInputPin struct {
	mu    sync.Mutex
	level bool

	// ReadFunc, if set, overrides the stored level entirely.
	ReadFunc func() bool
}

// NewSimInputPin returns a pin at the given initial level.
func NewSimInputPin(level bool) *SimInputPin {
	return &SimInputPin{level: level}
}

// Read returns the current level.
func (p *SimInputPin) Read() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ReadFunc != nil {
		return p.ReadFunc()
	}
	return p.level
}

// Set changes the level.
func (p *SimInputPin) Set(level bool) {
	p.mu.Lock()
	p.level = level
	p.mu.Unlock()
}

// SimOutputPin records every level written to it.
type SimOutputPin struct {
	mu      sync.Mutex
	level   bool
	history []bool
}

// Write sets the level and records it.
func (p *SimOutputPin) Write(high bool) {
	p.mu.Lock()
	p.level = high
	p.history = append(p.history, high)
	p.mu.Unlock()
}

// Level returns the last written level.
func (p *SimOutputPin) Level() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// History returns every level written, oldest first.
func (p *SimOutputPin) History() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]bool, len(p.history))
	copy(out, p.history)
	return out
}

// SimRadio is an in-memory radio. Association succeeds when the requested
// SSID is present in Networks with a matching password, after AssocDelay of
// simulated time has elapsed.
type SimRadio struct {
	mu sync.Mutex

	// Networks maps visible SSIDs to their passwords ("" = open network).
	Networks map[string]string

	// ScanResults is what Scan returns. May contain duplicates and be
	// unsorted; the portal is responsible for cleanup.
	ScanResults []Network

	// AssocDelay is how long after Connect the association completes.
	AssocDelay time.Duration

	// AcceptAny makes every association succeed regardless of the
	// password. Used by host boards, where the machine's own network
	// connectivity stands in for the radio.
	AcceptAny bool

	// ScanErr, when set, makes Scan fail.
	ScanErr error

	clock Clock

	stationActive bool
	connected     bool
	currentSSID   string
	stationIP     string
	connectedAt   time.Time
	pendingSSID   string
	pendingOK     bool

	apActive   bool
	apSettings APSettings
}

// NewSimRadio returns a radio with no visible networks.
func NewSimRadio(clock Clock) *SimRadio {
	return &SimRadio{
		Networks: make(map[string]string),
		clock:    clock,
	}
}

// EnableStation activates the client interface.
func (r *SimRadio) EnableStation() error {
	r.mu.Lock()
	r.stationActive = true
	r.mu.Unlock()
	return nil
}

// Connect begins a simulated association.
func (r *SimRadio) Connect(ssid, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.stationActive {
		return fmt.Errorf("station interface not active")
	}

	r.connected = false
	r.pendingSSID = ssid
	r.connectedAt = r.clock.Now().Add(r.AssocDelay)

	want, visible := r.Networks[ssid]
	r.pendingOK = r.AcceptAny || (visible && want == password)
	return nil
}

// IsConnected reports whether the pending association has completed.
func (r *SimRadio) IsConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connected {
		return true
	}
	if r.pendingSSID == "" || !r.pendingOK {
		return false
	}
	if r.clock.Now().Before(r.connectedAt) {
		return false
	}

	r.connected = true
	r.currentSSID = r.pendingSSID
	r.stationIP = "192.168.1.42"
	r.pendingSSID = ""
	return true
}

// StationIP returns the simulated station address.
func (r *SimRadio) StationIP() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.connected {
		return ""
	}
	return r.stationIP
}

// Disconnect drops the association.
func (r *SimRadio) Disconnect() {
	r.mu.Lock()
	r.connected = false
	r.currentSSID = ""
	r.stationIP = ""
	r.pendingSSID = ""
	r.mu.Unlock()
}

// CurrentSSID returns the SSID of the active association, or "".
func (r *SimRadio) CurrentSSID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentSSID
}

// Scan returns the scripted scan results.
func (r *SimRadio) Scan() ([]Network, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ScanErr != nil {
		return nil, r.ScanErr
	}
	out := make([]Network, len(r.ScanResults))
	copy(out, r.ScanResults)
	return out, nil
}

// StartAccessPoint stands up the simulated AP.
func (r *SimRadio) StartAccessPoint(settings APSettings) error {
	r.mu.Lock()
	r.apActive = true
	r.apSettings = settings
	r.mu.Unlock()
	return nil
}

// StopAccessPoint tears the simulated AP down.
func (r *SimRadio) StopAccessPoint() error {
	r.mu.Lock()
	r.apActive = false
	r.mu.Unlock()
	return nil
}

// APActive reports whether the simulated AP is up.
func (r *SimRadio) APActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.apActive
}

// SimRebooter records reboot requests. Real hardware never returns from
// Reboot; the simulation does, so callers must be written to tolerate that.
type SimRebooter struct {
	mu       sync.Mutex
	rebooted bool

	// OnReboot, if set, is invoked on Reboot. Tests use it to unwind the
	// caller (e.g. via panic/recover) when return-after-reboot would keep
	// a loop running.
	OnReboot func()
}

// Reboot records the request.
func (r *SimRebooter) Reboot() {
	r.mu.Lock()
	r.rebooted = true
	hook := r.OnReboot
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// Rebooted reports whether Reboot was called.
func (r *SimRebooter) Rebooted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rebooted
}

// NewSimBoard assembles a complete simulated board. The reset line idles
// high (button released, active-low) and the relay line idles high
// (relay off, active-low).
func NewSimBoard() (*Board, *SimClock, *SimRadio, *SimRebooter) {
	clock := NewSimClock()
	radio := NewSimRadio(clock)
	rebooter := &SimRebooter{}

	relay := &SimOutputPin{}
	relay.Write(true)

	board := &Board{
		Radio:    radio,
		Clock:    clock,
		Rebooter: rebooter,
		LED:      &SimOutputPin{},
		Reset:    NewSimInputPin(true),
		Relay:    relay,
		Trigger:  &SimOutputPin{},
		Echo:     NewSimInputPin(false),
	}
	return board, clock, radio, rebooter
}
