package portal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/andoniskgr/heating-system/internal/captivedns"
	"github.com/andoniskgr/heating-system/internal/config"
	"github.com/andoniskgr/heating-system/internal/credentials"
	"github.com/andoniskgr/heating-system/internal/hal"
	"github.com/andoniskgr/heating-system/internal/logging"
	"github.com/andoniskgr/heating-system/internal/sta"
)

const (
	// readinessPoll is the multiplexed wait granularity across the DNS and
	// HTTP listeners. Short enough that neither listener, nor a pending
	// shutdown, waits long behind the other.
	readinessPoll = 500 * time.Millisecond

	// requestDeadline bounds a single accepted HTTP exchange. Exchanges
	// are one request, one response, close.
	requestDeadline = 5 * time.Second

	// maxDNSQuery is the receive buffer for datagram queries.
	maxDNSQuery = 512
)

// ErrAbandoned is returned by Run when the context is cancelled before any
// submitted credentials validate.
var ErrAbandoned = errors.New("portal abandoned before credentials were configured")

// Portal is the captive-portal configuration session: a self-hosted access
// point, a DNS redirector, and an HTTP page for picking a network.
//
// All request handling runs on the single Run goroutine; the retry counter
// and credential store are never touched concurrently.
type Portal struct {
	radio     hal.Radio
	store     *credentials.Store
	connector *sta.Connector
	ap        config.AccessPoint

	// MaxRetries bounds the validation attempts per portal session
	// before the terminal "failed, await new input" page.
	MaxRetries int

	retryCount int

	apAddr netip.Addr

	dnsConn net.PacketConn
	httpLn  *net.TCPListener

	ready     chan struct{}
	readyOnce sync.Once
}

// New builds a portal session. The connector is used for one-shot
// validation of submitted credentials.
func New(radio hal.Radio, store *credentials.Store, connector *sta.Connector, ap config.AccessPoint) (*Portal, error) {
	addr, err := netip.ParseAddr(ap.IP)
	if err != nil || !addr.Is4() {
		return nil, fmt.Errorf("invalid access point IPv4 address %q", ap.IP)
	}
	return &Portal{
		radio:      radio,
		store:      store,
		connector:  connector,
		ap:         ap,
		MaxRetries: sta.DefaultMaxRetries,
		apAddr:     addr,
		ready:      make(chan struct{}),
	}, nil
}

// Ready is closed once the access point and both listeners are up.
func (p *Portal) Ready() <-chan struct{} { return p.ready }

// HTTPAddr returns the bound HTTP listener address. Valid after Ready.
func (p *Portal) HTTPAddr() net.Addr { return p.httpLn.Addr() }

// DNSAddr returns the bound DNS listener address. Valid after Ready.
func (p *Portal) DNSAddr() net.Addr { return p.dnsConn.LocalAddr() }

// Run stands up the access point plus both listeners and serves until a
// submitted credential pair validates and is persisted (nil), or ctx is
// cancelled (ErrAbandoned). The retry counter starts fresh on every Run.
//
// The serving loop is single-threaded: it alternates short deadline-bounded
// waits on the datagram and stream listeners so a slow or absent client on
// one can never starve the other.
func (p *Portal) Run(ctx context.Context) error {
	p.retryCount = 0

	if err := p.radio.StartAccessPoint(hal.APSettings{
		SSID:     p.ap.SSID,
		Password: p.ap.Password,
		IP:       p.ap.IP,
		Netmask:  p.ap.Netmask,
		Gateway:  p.ap.Gateway,
	}); err != nil {
		return fmt.Errorf("failed to start access point: %w", err)
	}
	defer func() {
		if err := p.radio.StopAccessPoint(); err != nil {
			logging.Warn("Failed to stop access point", zap.Error(err))
		}
	}()

	dnsConn, err := net.ListenPacket("udp4", p.ap.DNSListen)
	if err != nil {
		return fmt.Errorf("failed to open DNS listener: %w", err)
	}
	p.dnsConn = dnsConn
	defer dnsConn.Close()

	ln, err := net.Listen("tcp4", p.ap.HTTPListen)
	if err != nil {
		return fmt.Errorf("failed to open HTTP listener: %w", err)
	}
	tcpLn, ok := ln.(*net.TCPListener)
	if !ok {
		ln.Close()
		return fmt.Errorf("unexpected listener type %T", ln)
	}
	p.httpLn = tcpLn
	defer tcpLn.Close()

	logging.Info("Configuration portal started",
		zap.String("ssid", p.ap.SSID),
		zap.String("ip", p.ap.IP),
		zap.String("dns", dnsConn.LocalAddr().String()),
		zap.String("http", tcpLn.Addr().String()),
	)
	p.readyOnce.Do(func() { close(p.ready) })

	dnsBuf := make([]byte, maxDNSQuery)
	for {
		if ctx.Err() != nil {
			logging.Info("Configuration portal abandoned")
			return ErrAbandoned
		}

		p.pollDNS(dnsBuf)

		done, err := p.pollHTTP()
		if err != nil {
			return err
		}
		if done {
			logging.Info("Configuration portal finished: credentials saved")
			return nil
		}
	}
}

// pollDNS waits briefly for one datagram query and answers it. Malformed
// queries get no reply; errors on a single query never stop the loop.
func (p *Portal) pollDNS(buf []byte) {
	_ = p.dnsConn.SetReadDeadline(time.Now().Add(readinessPoll / 2))
	n, sender, err := p.dnsConn.ReadFrom(buf)
	if err != nil {
		if !isTimeout(err) {
			logging.Debug("DNS read error", zap.Error(err))
		}
		return
	}

	resp := captivedns.BuildResponse(buf[:n], p.apAddr)
	answered := resp != nil
	if answered {
		if _, err := p.dnsConn.WriteTo(resp, sender); err != nil {
			logging.Debug("DNS write error", zap.Error(err))
			answered = false
		}
	}
	logging.LogDNSQuery(sender.String(), n, answered)
}

// pollHTTP waits briefly for one stream connection and serves it. Returns
// done=true once submitted credentials validated and were saved.
func (p *Portal) pollHTTP() (done bool, err error) {
	_ = p.httpLn.SetDeadline(time.Now().Add(readinessPoll / 2))
	conn, err := p.httpLn.Accept()
	if err != nil {
		if isTimeout(err) {
			return false, nil
		}
		return false, fmt.Errorf("HTTP accept failed: %w", err)
	}
	return p.handleConn(conn), nil
}

// handleConn serves a single request/response exchange. Any failure while
// handling one connection is logged and the connection closed; the portal
// keeps serving.
func (p *Portal) handleConn(conn net.Conn) (done bool) {
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Panic while handling portal request",
				zap.Any("panic", r),
			)
			done = false
		}
	}()

	// The exchange is short and not pipelined; blocking with a deadline
	// is fine once a client is on the line.
	_ = conn.SetDeadline(time.Now().Add(requestDeadline))

	req, err := http.ReadRequest(bufio.NewReader(io.LimitReader(conn, 4096)))
	if err != nil {
		logging.Debug("Failed to read portal request", zap.Error(err))
		return false
	}

	remote := conn.RemoteAddr().String()
	path := req.URL.Path
	logging.LogPortalRequest(remote, req.Method, path)

	switch {
	case path == "/" || path == "/index.html":
		p.serveIndex(conn, remote)
		return false

	case path == "/save":
		return p.serveSave(conn, remote, req)

	default:
		// Captive-portal probes for arbitrary URLs land here; steer
		// the client to the configuration page.
		if err := writeRedirect(conn, "http://"+p.ap.IP+"/"); err != nil {
			logging.Debug("Failed to write redirect", zap.Error(err))
		}
		logging.LogPortalResponse(remote, http.StatusFound)
		return false
	}
}

// serveIndex renders a fresh network scan into the selection page.
func (p *Portal) serveIndex(conn net.Conn, remote string) {
	raw, err := p.radio.Scan()
	if err != nil {
		logging.Warn("Network scan failed", zap.Error(err))
		raw = nil
	}

	body, err := renderPage("index", indexData{Networks: prepareScan(raw)})
	if err != nil {
		logging.Error("Failed to render index page", zap.Error(err))
		return
	}
	if err := writeHTML(conn, http.StatusOK, body); err != nil {
		logging.Debug("Failed to write index page", zap.Error(err))
		return
	}
	logging.LogPortalResponse(remote, http.StatusOK)
}

// serveSave validates a submitted (ssid, password) pair against the real
// network. Success persists the record and ends the portal session; failure
// counts against the bounded retry budget.
func (p *Portal) serveSave(conn net.Conn, remote string, req *http.Request) bool {
	params := ParseQuery(req.URL.RawQuery)
	if req.Method == http.MethodPost {
		// Forms posted as a body instead of a query string carry the
		// same encoding.
		body, err := io.ReadAll(io.LimitReader(req.Body, 2048))
		if err == nil {
			for k, v := range ParseQuery(strings.TrimSpace(string(body))) {
				params[k] = v
			}
		}
	}

	ssid := params["ssid"]
	password := params["password"]

	if ssid == "" {
		if err := writeClientError(conn, "SSID required"); err != nil {
			logging.Debug("Failed to write error response", zap.Error(err))
		}
		logging.LogPortalResponse(remote, http.StatusBadRequest)
		return false
	}

	p.retryCount++
	logging.Info("Validating submitted credentials",
		zap.String("ssid", ssid),
		zap.Int("attempt", p.retryCount),
		zap.Int("max", p.MaxRetries),
	)

	if p.connector.Connect(ssid, password) {
		if err := p.store.Save(credentials.Credentials{SSID: ssid, Password: password}); err != nil {
			logging.Error("Failed to persist validated credentials", zap.Error(err))
			// Without a persisted record a reboot would loop back
			// here; let the client retry instead of claiming success.
			p.respondAttempt(conn, remote, "retry", ssid)
			return false
		}
		body, err := renderPage("success", attemptData{SSID: ssid})
		if err == nil {
			if werr := writeHTML(conn, http.StatusOK, body); werr != nil {
				logging.Debug("Failed to write success page", zap.Error(werr))
			}
		}
		logging.LogPortalResponse(remote, http.StatusOK)
		return true
	}

	if p.retryCount >= p.MaxRetries {
		p.retryCount = 0
		p.respondAttempt(conn, remote, "exhausted", ssid)
		return false
	}

	p.respondAttempt(conn, remote, "retry", ssid)
	return false
}

func (p *Portal) respondAttempt(conn net.Conn, remote, page, ssid string) {
	body, err := renderPage(page, attemptData{
		SSID:    ssid,
		Attempt: p.retryCount,
		Max:     p.MaxRetries,
	})
	if err != nil {
		logging.Error("Failed to render result page", zap.Error(err))
		return
	}
	if err := writeHTML(conn, http.StatusOK, body); err != nil {
		logging.Debug("Failed to write result page", zap.Error(err))
		return
	}
	logging.LogPortalResponse(remote, http.StatusOK)
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
