package resetbutton

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/andoniskgr/heating-system/internal/credentials"
	"github.com/andoniskgr/heating-system/internal/hal"
)

func newDetector(t *testing.T) (*Detector, *hal.SimInputPin, *credentials.Store, *hal.SimClock, *hal.SimRebooter) {
	t.Helper()

	clock := hal.NewSimClock()
	pin := hal.NewSimInputPin(true)
	rebooter := &hal.SimRebooter{}
	store := credentials.NewStore(filepath.Join(t.TempDir(), "wifi_creds.json"))
	if err := store.Save(credentials.Credentials{SSID: "HomeNet", Password: "secret123"}); err != nil {
		t.Fatalf("seeding credentials failed: %v", err)
	}
	return New(pin, store, clock, rebooter), pin, store, clock, rebooter
}

func TestCheckButtonReleased(t *testing.T) {
	d, _, store, _, rebooter := newDetector(t)

	if d.Check() {
		t.Error("Check() fired with the button released")
	}
	if rebooter.Rebooted() {
		t.Error("rebooted with the button released")
	}
	if _, ok := store.Read(); !ok {
		t.Error("credentials were erased with the button released")
	}
}

func TestCheckFullHoldErasesAndReboots(t *testing.T) {
	d, pin, store, _, rebooter := newDetector(t)

	pin.Set(false)
	if !d.Check() {
		t.Fatal("Check() did not fire after a full hold")
	}
	if !rebooter.Rebooted() {
		t.Error("controller was not rebooted")
	}
	if _, ok := store.Read(); ok {
		t.Error("credentials survived the reset hold")
	}
}

func TestCheckEarlyReleaseKeepsCredentials(t *testing.T) {
	d, pin, store, clock, rebooter := newDetector(t)

	// Release one sample before the hold window completes.
	start := clock.Now()
	releaseAt := start.Add(d.Hold - d.Poll)
	clock.OnSleep = func(now time.Time) {
		if !now.Before(releaseAt) {
			pin.Set(true)
		}
	}

	pin.Set(false)
	if d.Check() {
		t.Error("Check() fired despite an early release")
	}
	if rebooter.Rebooted() {
		t.Error("rebooted despite an early release")
	}
	if _, ok := store.Read(); !ok {
		t.Error("credentials were erased despite an early release")
	}
}

func TestCheckReleaseJustAfterThreshold(t *testing.T) {
	d, pin, _, clock, rebooter := newDetector(t)

	// Release only after the final sample of the window; the erase must
	// still fire.
	start := clock.Now()
	releaseAt := start.Add(d.Hold + d.Poll)
	clock.OnSleep = func(now time.Time) {
		if !now.Before(releaseAt) {
			pin.Set(true)
		}
	}

	pin.Set(false)
	if !d.Check() {
		t.Error("Check() did not fire for a hold spanning the full window")
	}
	if !rebooter.Rebooted() {
		t.Error("controller was not rebooted")
	}
}
