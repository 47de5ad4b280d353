package portal

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andoniskgr/heating-system/internal/config"
	"github.com/andoniskgr/heating-system/internal/credentials"
	"github.com/andoniskgr/heating-system/internal/hal"
	"github.com/andoniskgr/heating-system/internal/sta"
)

// testPortal bundles a running portal session with its simulated radio and
// credential store.
type testPortal struct {
	portal *Portal
	radio  *hal.SimRadio
	store  *credentials.Store
	cancel context.CancelFunc

	runErr   chan error
	waitOnce sync.Once
	err      error
}

// wait blocks until Run returns and memoizes its result.
func (tp *testPortal) wait(t *testing.T) error {
	t.Helper()
	tp.waitOnce.Do(func() {
		select {
		case tp.err = <-tp.runErr:
		case <-time.After(5 * time.Second):
			t.Fatal("portal did not stop")
		}
	})
	return tp.err
}

// startPortal runs a portal on loopback with one joinable network,
// "HomeNet" / "secret123", visible alongside a weaker "Guest".
func startPortal(t *testing.T) *testPortal {
	t.Helper()

	clock := hal.NewSimClock()
	radio := hal.NewSimRadio(clock)
	radio.Networks["HomeNet"] = "secret123"
	radio.ScanResults = []hal.Network{
		{SSID: "HomeNet", RSSI: -40},
		{SSID: "Guest", RSSI: -70},
	}
	if err := radio.EnableStation(); err != nil {
		t.Fatalf("EnableStation() failed: %v", err)
	}

	store := credentials.NewStore(filepath.Join(t.TempDir(), "wifi_creds.json"))
	connector := sta.New(radio, store, clock)

	p, err := New(radio, store, connector, config.AccessPoint{
		SSID:       "pico_control",
		Password:   "12345678",
		IP:         "192.168.4.1",
		Netmask:    "255.255.255.0",
		Gateway:    "192.168.4.1",
		DNSListen:  "127.0.0.1:0",
		HTTPListen: "127.0.0.1:0",
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- p.Run(ctx) }()

	select {
	case <-p.Ready():
	case err := <-runErr:
		cancel()
		t.Fatalf("portal exited before becoming ready: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("portal did not become ready")
	}

	tp := &testPortal{portal: p, radio: radio, store: store, cancel: cancel, runErr: runErr}
	t.Cleanup(func() {
		cancel()
		tp.wait(t)
	})
	return tp
}

// get fetches a portal path without following redirects.
func (tp *testPortal) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()

	client := &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Get("http://" + tp.portal.HTTPAddr().String() + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading GET %s body failed: %v", path, err)
	}
	return resp, string(body)
}

func TestPortalServesScanResults(t *testing.T) {
	tp := startPortal(t)

	resp, body := tp.get(t, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}

	home := strings.Index(body, "HomeNet (RSSI: -40)")
	guest := strings.Index(body, "Guest (RSSI: -70)")
	if home < 0 || guest < 0 {
		t.Fatalf("index page missing scanned networks:\n%s", body)
	}
	if home > guest {
		t.Errorf("networks not ordered by signal strength: HomeNet at %d, Guest at %d", home, guest)
	}
}

func TestPortalAcceptsValidCredentials(t *testing.T) {
	tp := startPortal(t)

	resp, body := tp.get(t, "/save?ssid=HomeNet&password=secret123")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /save status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, "Connected! Rebooting...") {
		t.Errorf("success page not served:\n%s", body)
	}

	if err := tp.wait(t); err != nil {
		t.Fatalf("Run() = %v, want nil after successful configuration", err)
	}

	creds, ok := tp.store.Read()
	if !ok {
		t.Fatal("credentials were not persisted")
	}
	if creds.SSID != "HomeNet" || creds.Password != "secret123" {
		t.Errorf("persisted credentials = %+v", creds)
	}
}

func TestPortalAcceptsPostedForm(t *testing.T) {
	tp := startPortal(t)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Post(
		"http://"+tp.portal.HTTPAddr().String()+"/save",
		"application/x-www-form-urlencoded",
		strings.NewReader("ssid=HomeNet&password=secret123"),
	)
	if err != nil {
		t.Fatalf("POST /save failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /save status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(string(body), "Connected! Rebooting...") {
		t.Errorf("success page not served:\n%s", body)
	}
	if _, ok := tp.store.Read(); !ok {
		t.Error("credentials were not persisted")
	}
}

func TestPortalBoundedRetries(t *testing.T) {
	tp := startPortal(t)

	// Two failed attempts show the retry page with a running count.
	for attempt := 1; attempt <= 2; attempt++ {
		resp, body := tp.get(t, "/save?ssid=HomeNet&password=wrong")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("attempt %d status = %d, want %d", attempt, resp.StatusCode, http.StatusOK)
		}
		if !strings.Contains(body, "Connection failed. Retrying...") {
			t.Fatalf("attempt %d did not serve retry page:\n%s", attempt, body)
		}
		if want := fmt.Sprintf("Attempt %d of 3", attempt); !strings.Contains(body, want) {
			t.Errorf("attempt %d page missing %q:\n%s", attempt, want, body)
		}
	}

	// The third failure exhausts the budget.
	_, body := tp.get(t, "/save?ssid=HomeNet&password=wrong")
	if !strings.Contains(body, "Connection failed after 3 tries.") {
		t.Fatalf("third attempt did not serve exhausted page:\n%s", body)
	}

	// The counter resets: the next failure is attempt 1 again.
	_, body = tp.get(t, "/save?ssid=HomeNet&password=wrong")
	if !strings.Contains(body, "Attempt 1 of 3") {
		t.Errorf("retry counter did not reset after exhaustion:\n%s", body)
	}

	if _, ok := tp.store.Read(); ok {
		t.Error("credentials persisted despite every attempt failing")
	}

	// A correct submission still works after exhaustion.
	_, body = tp.get(t, "/save?ssid=HomeNet&password=secret123")
	if !strings.Contains(body, "Connected! Rebooting...") {
		t.Errorf("valid credentials rejected after exhaustion:\n%s", body)
	}
}

func TestPortalRejectsMissingSSID(t *testing.T) {
	tp := startPortal(t)

	resp, body := tp.get(t, "/save?password=whatever")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if !strings.Contains(body, "SSID required") {
		t.Errorf("unexpected error body: %q", body)
	}
	if _, ok := tp.store.Read(); ok {
		t.Error("credentials persisted from a rejected submission")
	}
}

func TestPortalRedirectsUnknownPaths(t *testing.T) {
	tp := startPortal(t)

	for _, path := range []string{"/generate_204", "/hotspot-detect.html", "/anything/else"} {
		resp, _ := tp.get(t, path)
		if resp.StatusCode != http.StatusFound {
			t.Errorf("GET %s status = %d, want %d", path, resp.StatusCode, http.StatusFound)
			continue
		}
		if loc := resp.Header.Get("Location"); loc != "http://192.168.4.1/" {
			t.Errorf("GET %s Location = %q, want %q", path, loc, "http://192.168.4.1/")
		}
	}
}

func TestPortalAnswersDNS(t *testing.T) {
	tp := startPortal(t)

	conn, err := net.Dial("udp", tp.portal.DNSAddr().String())
	if err != nil {
		t.Fatalf("dialing DNS listener failed: %v", err)
	}
	defer conn.Close()

	query := buildDNSQuery(0xBEEF, "clients3.google.com")
	if _, err := conn.Write(query); err != nil {
		t.Fatalf("sending DNS query failed: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	buf := make([]byte, 512)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("reading DNS response failed: %v", err)
	}
	resp := buf[:n]

	if id := binary.BigEndian.Uint16(resp[0:2]); id != 0xBEEF {
		t.Errorf("transaction ID = %#x, want 0xBEEF", id)
	}
	rdata := resp[n-4:]
	want := net.IPv4(192, 168, 4, 1).To4()
	if !net.IP(rdata).Equal(want) {
		t.Errorf("answer address = %v, want %v", net.IP(rdata), want)
	}
}

func TestPortalIgnoresTruncatedDNS(t *testing.T) {
	tp := startPortal(t)

	conn, err := net.Dial("udp", tp.portal.DNSAddr().String())
	if err != nil {
		t.Fatalf("dialing DNS listener failed: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte{0x12, 0x34, 0x01}); err != nil {
		t.Fatalf("sending truncated query failed: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(750 * time.Millisecond))
	var netErr net.Error
	if _, err := conn.Read(make([]byte, 512)); !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Errorf("expected read timeout for truncated query, got %v", err)
	}
}

func TestPortalAbandonedOnCancel(t *testing.T) {
	tp := startPortal(t)

	tp.cancel()
	if err := tp.wait(t); !errors.Is(err, ErrAbandoned) {
		t.Errorf("Run() = %v, want ErrAbandoned", err)
	}
}

// buildDNSQuery assembles a minimal A-record question.
func buildDNSQuery(id uint16, name string) []byte {
	q := binary.BigEndian.AppendUint16(nil, id)
	q = binary.BigEndian.AppendUint16(q, 0x0100) // recursion desired
	q = binary.BigEndian.AppendUint16(q, 1)      // QDCOUNT
	q = append(q, 0, 0, 0, 0, 0, 0)              // AN/NS/AR counts
	for _, label := range strings.Split(name, ".") {
		q = append(q, byte(len(label)))
		q = append(q, label...)
	}
	q = append(q, 0)
	q = binary.BigEndian.AppendUint16(q, 1) // TYPE A
	q = binary.BigEndian.AppendUint16(q, 1) // CLASS IN
	return q
}
