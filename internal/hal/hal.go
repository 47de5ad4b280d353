package hal

import "time"

// Clock abstracts time so the polling loops in the provisioning core can be
// driven by a fake in tests. The underlying radio API is poll-based, so the
// firmware sleeps in small fixed increments rather than blocking on OS calls.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// InputPin is a digital input line. Read returns the electrical level:
// true for high, false for low. Active-low signals (the reset button)
// are interpreted by the caller.
type InputPin interface {
	Read() bool
}

// OutputPin is a digital output line.
type OutputPin interface {
	Write(high bool)
}

// Network is a single scan result.
type Network struct {
	SSID string
	RSSI int // dBm, more positive is stronger
}

// APSettings describes the self-hosted network the radio should stand up.
type APSettings struct {
	SSID     string
	Password string
	IP       string
	Netmask  string
	Gateway  string
}

// Radio is the single-radio WiFi interface. The device is either a station
// or an access point; callers must not assume both can run concurrently
// for extended periods.
type Radio interface {
	// EnableStation activates the client interface.
	EnableStation() error

	// Connect issues a station-mode association request. It does not wait
	// for the association to finish; callers poll IsConnected.
	Connect(ssid, password string) error

	// IsConnected reports whether the station interface has an address.
	IsConnected() bool

	// StationIP returns the station address, or "" when not connected.
	StationIP() string

	// Disconnect drops the current station association, if any.
	Disconnect()

	// Scan returns the raw set of visible networks. Duplicate SSIDs and
	// ordering are the caller's problem.
	Scan() ([]Network, error)

	// StartAccessPoint stands up the self-hosted network.
	StartAccessPoint(settings APSettings) error

	// StopAccessPoint tears the self-hosted network down.
	StopAccessPoint() error
}

// Rebooter performs a hard device restart. On real hardware Reboot never
// returns; the simulated implementation records the request and returns so
// tests can observe it.
type Rebooter interface {
	Reboot()
}

// Board bundles the hardware resources the firmware needs.
type Board struct {
	Radio    Radio
	Clock    Clock
	Rebooter Rebooter

	LED     OutputPin
	Reset   InputPin
	Relay   OutputPin
	Trigger OutputPin
	Echo    InputPin
}
