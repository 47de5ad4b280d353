package sta

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/andoniskgr/heating-system/internal/credentials"
	"github.com/andoniskgr/heating-system/internal/hal"
)

// countingRadio counts association requests so tests can verify retry
// bounds.
type countingRadio struct {
	*hal.SimRadio
	connects int
}

func (r *countingRadio) Connect(ssid, password string) error {
	r.connects++
	return r.SimRadio.Connect(ssid, password)
}

func newTestConnector(t *testing.T) (*Connector, *countingRadio, *hal.SimClock, *credentials.Store) {
	t.Helper()

	clock := hal.NewSimClock()
	radio := &countingRadio{SimRadio: hal.NewSimRadio(clock)}
	store := credentials.NewStore(filepath.Join(t.TempDir(), "wifi_creds.json"))

	c := New(radio, store, clock)
	return c, radio, clock, store
}

func TestConnectSucceeds(t *testing.T) {
	c, radio, _, _ := newTestConnector(t)
	radio.Networks["HomeNet"] = "secret123"
	radio.AssocDelay = 2 * time.Second

	if !c.Connect("HomeNet", "secret123") {
		t.Error("Connect() = false, want true for valid credentials")
	}
	if radio.StationIP() == "" {
		t.Error("StationIP() empty after successful connect")
	}
}

func TestConnectWrongPassword(t *testing.T) {
	c, radio, clock, _ := newTestConnector(t)
	radio.Networks["HomeNet"] = "secret123"

	start := clock.Now()
	if c.Connect("HomeNet", "wrong") {
		t.Error("Connect() = true, want false for wrong password")
	}

	// The attempt must give up only after the configured timeout.
	if elapsed := clock.Now().Sub(start); elapsed < c.Timeout {
		t.Errorf("gave up after %v, want at least %v", elapsed, c.Timeout)
	}
}

func TestConnectUnknownNetwork(t *testing.T) {
	c, _, _, _ := newTestConnector(t)

	if c.Connect("NoSuchNet", "pw") {
		t.Error("Connect() = true, want false for invisible network")
	}
}

func TestConnectEmptySSID(t *testing.T) {
	c, radio, _, _ := newTestConnector(t)

	if c.Connect("", "pw") {
		t.Error("Connect() = true, want false for empty ssid")
	}
	if radio.connects != 0 {
		t.Errorf("radio.Connect called %d times, want 0", radio.connects)
	}
}

func TestConnectStoredWithoutCredentials(t *testing.T) {
	c, radio, _, _ := newTestConnector(t)

	if c.ConnectStored() {
		t.Error("ConnectStored() = true, want false with no stored record")
	}
	if radio.connects != 0 {
		t.Errorf("radio.Connect called %d times, want 0", radio.connects)
	}
}

func TestConnectWithRetriesBounded(t *testing.T) {
	c, radio, _, store := newTestConnector(t)
	radio.Networks["HomeNet"] = "secret123"

	if err := store.Save(credentials.Credentials{SSID: "HomeNet", Password: "wrong"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if c.ConnectWithRetries() {
		t.Error("ConnectWithRetries() = true, want false when every attempt fails")
	}
	if radio.connects != c.MaxRetries {
		t.Errorf("radio.Connect called %d times, want exactly %d", radio.connects, c.MaxRetries)
	}
}

func TestConnectWithRetriesStopsOnFirstSuccess(t *testing.T) {
	c, radio, _, store := newTestConnector(t)
	radio.Networks["HomeNet"] = "secret123"

	if err := store.Save(credentials.Credentials{SSID: "HomeNet", Password: "secret123"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if !c.ConnectWithRetries() {
		t.Fatal("ConnectWithRetries() = false, want true")
	}
	if radio.connects != 1 {
		t.Errorf("radio.Connect called %d times, want 1 (no attempts after success)", radio.connects)
	}
}

func TestConnectWithRetriesNoStoredCredentials(t *testing.T) {
	c, radio, _, _ := newTestConnector(t)

	if c.ConnectWithRetries() {
		t.Error("ConnectWithRetries() = true, want false with no stored record")
	}
	if radio.connects != 0 {
		t.Errorf("radio.Connect called %d times, want 0", radio.connects)
	}
}
