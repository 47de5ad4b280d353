package provision

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/andoniskgr/heating-system/internal/credentials"
	"github.com/andoniskgr/heating-system/internal/hal"
	"github.com/andoniskgr/heating-system/internal/logging"
	"github.com/andoniskgr/heating-system/internal/portal"
	"github.com/andoniskgr/heating-system/internal/resetbutton"
	"github.com/andoniskgr/heating-system/internal/sta"
)

// State identifies where the controller is in its network bring-up.
type State int

const (
	StateUnprovisioned State = iota
	StateClientConnect
	StateAPConfig
	StateConnected
	StateRebooting
)

func (s State) String() string {
	switch s {
	case StateUnprovisioned:
		return "unprovisioned"
	case StateClientConnect:
		return "client-connect"
	case StateAPConfig:
		return "ap-config"
	case StateConnected:
		return "connected"
	case StateRebooting:
		return "rebooting"
	default:
		return "unknown"
	}
}

// rebootSettle gives a portal client time to receive the success page
// before the controller restarts.
const rebootSettle = 2 * time.Second

// ErrRestartRequired is returned when provisioning ends in a reboot
// request. On hardware Reboot never returns; the simulated board does
// return, and callers must treat this error as "stop, do not continue".
var ErrRestartRequired = errors.New("controller restart required")

// Manager drives the controller from power-on to a working client-mode
// network connection, falling back to the configuration portal when no
// usable credentials exist.
type Manager struct {
	store     *credentials.Store
	connector *sta.Connector
	portal    *portal.Portal
	reset     *resetbutton.Detector
	radio     hal.Radio
	led       hal.OutputPin
	clock     hal.Clock
	rebooter  hal.Rebooter

	// SyncTime, if set, is called once after a successful client
	// connect. Failures are the hook's problem; provisioning never
	// blocks on it.
	SyncTime func()

	state State
}

// New assembles a Manager. The portal is only started when the stored
// credentials are absent or fail to connect.
func New(
	store *credentials.Store,
	connector *sta.Connector,
	p *portal.Portal,
	reset *resetbutton.Detector,
	board *hal.Board,
) *Manager {
	return &Manager{
		store:     store,
		connector: connector,
		portal:    p,
		reset:     reset,
		radio:     board.Radio,
		led:       board.LED,
		clock:     board.Clock,
		rebooter:  board.Rebooter,
		state:     StateUnprovisioned,
	}
}

// State returns the current provisioning state.
func (m *Manager) State() State { return m.state }

func (m *Manager) transition(to State, reason string) {
	logging.LogStateTransition(m.state.String(), to.String(), reason)
	m.state = to
}

// EnsureConnected runs the full bring-up sequence and returns the station
// IP address once the controller is on a network.
//
// The sequence: check the reset button, try stored credentials with
// bounded retries, and otherwise serve the configuration portal until a
// working credential pair is saved, then reboot into the fast path.
// A context cancellation while the portal is up returns the portal's
// abandonment error.
func (m *Manager) EnsureConnected(ctx context.Context) (string, error) {
	if m.reset.Check() {
		m.transition(StateRebooting, "factory reset")
		return "", ErrRestartRequired
	}

	if creds, ok := m.store.Read(); ok {
		m.transition(StateClientConnect, "stored credentials found")
		logging.Info("Connecting with stored credentials",
			zap.String("ssid", creds.SSID),
		)
		if m.connector.ConnectWithRetries() {
			return m.connected(), nil
		}
		logging.Warn("Stored credentials failed to connect, opening portal",
			zap.String("ssid", creds.SSID),
		)
	}

	m.led.Write(false)
	m.transition(StateAPConfig, "no usable credentials")

	if err := m.portal.Run(ctx); err != nil {
		return "", err
	}

	// New credentials are on disk; restart so the boot path picks them
	// up the same way every time.
	m.clock.Sleep(rebootSettle)
	m.transition(StateRebooting, "credentials configured")
	m.rebooter.Reboot()
	return "", ErrRestartRequired
}

func (m *Manager) connected() string {
	m.transition(StateConnected, "client connect succeeded")
	m.led.Write(true)

	ip := m.radio.StationIP()
	logging.Info("Network up", zap.String("ip", ip))

	if m.SyncTime != nil {
		m.SyncTime()
	}
	return ip
}
