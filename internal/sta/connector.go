package sta

import (
	"time"

	"go.uber.org/zap"

	"github.com/andoniskgr/heating-system/internal/credentials"
	"github.com/andoniskgr/heating-system/internal/hal"
	"github.com/andoniskgr/heating-system/internal/logging"
)

const (
	// DefaultTimeout bounds a single connect attempt.
	DefaultTimeout = 15 * time.Second

	// DefaultPollInterval is how often connection status is sampled while
	// waiting for an association to complete.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultMaxRetries bounds ConnectWithRetries.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the fixed pause between attempts. Retries are
	// a fixed count with no backoff: the provisioning flow is short,
	// bounded and operator-observable, so backoff buys nothing here.
	DefaultRetryDelay = 1 * time.Second
)

// Connector joins an existing wireless network in station mode.
type Connector struct {
	radio hal.Radio
	store *credentials.Store
	clock hal.Clock

	// Timeout bounds a single attempt; PollInterval is the status
	// sampling granularity within it.
	Timeout      time.Duration
	PollInterval time.Duration

	// MaxRetries and RetryDelay govern ConnectWithRetries only; Connect
	// itself never retries.
	MaxRetries int
	RetryDelay time.Duration
}

// New returns a Connector with the default policy.
func New(radio hal.Radio, store *credentials.Store, clock hal.Clock) *Connector {
	return &Connector{
		radio:        radio,
		store:        store,
		clock:        clock,
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
		MaxRetries:   DefaultMaxRetries,
		RetryDelay:   DefaultRetryDelay,
	}
}

// Connect performs a single connection attempt to the given network,
// polling status until connected or the timeout elapses. It does not retry.
func (c *Connector) Connect(ssid, password string) bool {
	if ssid == "" {
		return false
	}

	if err := c.radio.EnableStation(); err != nil {
		logging.Error("Failed to enable station interface", zap.Error(err))
		return false
	}
	if err := c.radio.Connect(ssid, password); err != nil {
		logging.Error("Connect request failed",
			zap.String("ssid", ssid),
			zap.Error(err),
		)
		return false
	}

	start := c.clock.Now()
	for {
		if c.radio.IsConnected() {
			logging.Info("Station connected",
				zap.String("ssid", ssid),
				zap.String("ip", c.radio.StationIP()),
			)
			return true
		}
		if c.clock.Now().Sub(start) >= c.Timeout {
			logging.Warn("Station connect timed out",
				zap.String("ssid", ssid),
				zap.Duration("timeout", c.Timeout),
			)
			return false
		}
		c.clock.Sleep(c.PollInterval)
	}
}

// ConnectStored performs a single attempt using the stored credentials.
// Returns false immediately, without touching the radio, when no usable
// record exists.
func (c *Connector) ConnectStored() bool {
	creds, ok := c.store.Read()
	if !ok {
		return false
	}
	return c.Connect(creds.SSID, creds.Password)
}

// ConnectWithRetries tries the stored credentials up to MaxRetries times
// with a fixed delay between attempts, returning true on the first success.
// This is the only place automatic retry happens.
func (c *Connector) ConnectWithRetries() bool {
	creds, ok := c.store.Read()
	if !ok {
		return false
	}

	for attempt := 1; attempt <= c.MaxRetries; attempt++ {
		logging.LogConnectAttempt(creds.SSID, attempt, c.MaxRetries)
		if c.Connect(creds.SSID, creds.Password) {
			return true
		}
		if attempt < c.MaxRetries {
			c.clock.Sleep(c.RetryDelay)
		}
	}

	logging.Warn("All station connect attempts failed",
		zap.String("ssid", creds.SSID),
		zap.Int("attempts", c.MaxRetries),
	)
	return false
}
