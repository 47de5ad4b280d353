package resetbutton

import (
	"time"

	"go.uber.org/zap"

	"github.com/andoniskgr/heating-system/internal/credentials"
	"github.com/andoniskgr/heating-system/internal/hal"
	"github.com/andoniskgr/heating-system/internal/logging"
)

const (
	// DefaultHold is how long the button must stay pressed before the
	// stored network credentials are wiped.
	DefaultHold = 3 * time.Second

	// DefaultPoll is the debounce sampling interval while the button is
	// held.
	DefaultPoll = 100 * time.Millisecond
)

// Detector watches a physical button at boot. Holding it through the full
// window erases the stored credentials and restarts the controller so it
// comes back up unprovisioned.
//
// The line is active-low: a pull-up keeps it high and pressing the button
// pulls it to ground.
type Detector struct {
	pin      hal.InputPin
	store    *credentials.Store
	clock    hal.Clock
	rebooter hal.Rebooter

	Hold time.Duration
	Poll time.Duration
}

// New returns a Detector with the default hold window.
func New(pin hal.InputPin, store *credentials.Store, clock hal.Clock, rebooter hal.Rebooter) *Detector {
	return &Detector{
		pin:      pin,
		store:    store,
		clock:    clock,
		rebooter: rebooter,
		Hold:     DefaultHold,
		Poll:     DefaultPoll,
	}
}

// Check samples the button once and, if pressed, keeps sampling until it is
// released or the hold window elapses. A completed hold erases the stored
// credentials and reboots. It reports whether the erase fired.
//
// Hardware never returns from a reboot; under simulation Reboot does
// return, and Check returns true in that case.
func (d *Detector) Check() bool {
	if d.pin.Read() {
		return false
	}

	logging.Info("Reset button pressed, waiting for hold",
		zap.Duration("hold", d.Hold),
	)

	start := d.clock.Now()
	for d.clock.Now().Sub(start) < d.Hold {
		d.clock.Sleep(d.Poll)
		if d.pin.Read() {
			logging.Info("Reset button released early, keeping credentials",
				zap.Duration("held", d.clock.Now().Sub(start)),
			)
			return false
		}
	}

	logging.Info("Reset hold complete, erasing stored credentials")
	if err := d.store.Erase(); err != nil {
		logging.Error("Failed to erase stored credentials", zap.Error(err))
	}
	d.rebooter.Reboot()
	return true
}
