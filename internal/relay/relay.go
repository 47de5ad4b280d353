// Package relay drives the heating relay. The driver input is active-low:
// driving the line low energizes the coil.
package relay

import (
	"go.uber.org/zap"

	"github.com/andoniskgr/heating-system/internal/hal"
	"github.com/andoniskgr/heating-system/internal/logging"
)

// Relay controls one active-low relay channel and tracks its logical
// state. The tracked state is authoritative; output pins on this hardware
// cannot be read back.
type Relay struct {
	pin hal.OutputPin
	on  bool
}

// New returns a Relay driven through pin, forced to the de-energized
// state so a reboot never leaves the heater running.
func New(pin hal.OutputPin) *Relay {
	r := &Relay{pin: pin}
	r.Off()
	return r
}

// On energizes the relay.
func (r *Relay) On() {
	r.pin.Write(false)
	if !r.on {
		logging.Info("Relay energized", zap.String("state", "ON"))
	}
	r.on = true
}

// Off de-energizes the relay.
func (r *Relay) Off() {
	r.pin.Write(true)
	if r.on {
		logging.Info("Relay released", zap.String("state", "OFF"))
	}
	r.on = false
}

// IsOn reports the tracked relay state.
func (r *Relay) IsOn() bool { return r.on }

// StatusString returns "ON" or "OFF" for status reports.
func (r *Relay) StatusString() string {
	if r.on {
		return "ON"
	}
	return "OFF"
}
