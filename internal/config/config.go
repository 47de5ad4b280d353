package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults mirror the values the controller shipped with. A missing config
// file is not an error; the firmware runs on defaults alone.
const (
	DefaultAPSSID     = "pico_control"
	DefaultAPPassword = "12345678"
	DefaultAPIP       = "192.168.4.1"
	DefaultAPNetmask  = "255.255.255.0"
	DefaultAPGateway  = "192.168.4.1"

	DefaultCredentialFile = "wifi_creds.json"

	DefaultMaxRetries     = 3
	DefaultConnectTimeout = 15 * time.Second

	DefaultResetHold    = 3 * time.Second
	DefaultLEDPin       = 25 // onboard LED
	DefaultResetPin     = 0  // BOOTSEL-adjacent GPIO, active-low with pull-up
	DefaultRelayPin     = 15 // active-low relay driver
	DefaultTriggerPin   = 3
	DefaultEchoPin      = 2
	DefaultPollInterval = 2 * time.Second
	DefaultReportEvery  = 30 * time.Minute

	DefaultDNSListen  = ":53"
	DefaultHTTPListen = ":80"

	DefaultNTPHost = "pool.ntp.org"
)

// AccessPoint holds the identity of the self-hosted configuration network.
type AccessPoint struct {
	SSID     string `yaml:"ssid"`
	Password string `yaml:"password"`
	IP       string `yaml:"ip"`
	Netmask  string `yaml:"netmask"`
	Gateway  string `yaml:"gateway"`
	// Listen addresses for the captive portal. Overridable so the portal
	// can run unprivileged on a development host.
	DNSListen  string `yaml:"dns_listen"`
	HTTPListen string `yaml:"http_listen"`
}

// WiFi holds station-mode connection policy.
type WiFi struct {
	CredentialFile string        `yaml:"credential_file"`
	MaxRetries     int           `yaml:"max_retries"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// Pins maps the controller's physical signals to GPIO numbers.
type Pins struct {
	LED     int `yaml:"led"`
	Reset   int `yaml:"reset"`
	Relay   int `yaml:"relay"`
	Trigger int `yaml:"trigger"`
	Echo    int `yaml:"echo"`
}

// Cloud holds the remote key-value store endpoint used for commands,
// status and history.
type Cloud struct {
	BaseURL      string        `yaml:"base_url"`
	AuthToken    string        `yaml:"auth_token"`
	PollInterval time.Duration `yaml:"poll_interval"`
	ReportEvery  time.Duration `yaml:"report_every"`
}

// Config is the complete controller configuration.
type Config struct {
	AP        AccessPoint   `yaml:"access_point"`
	WiFi      WiFi          `yaml:"wifi"`
	Pins      Pins          `yaml:"pins"`
	Cloud     Cloud         `yaml:"cloud"`
	ResetHold time.Duration `yaml:"reset_hold"`
	NTPHost   string        `yaml:"ntp_host"`
	LogLevel  string        `yaml:"log_level"`
}

// Default returns a Config populated with the shipped defaults.
func Default() *Config {
	return &Config{
		AP: AccessPoint{
			SSID:       DefaultAPSSID,
			Password:   DefaultAPPassword,
			IP:         DefaultAPIP,
			Netmask:    DefaultAPNetmask,
			Gateway:    DefaultAPGateway,
			DNSListen:  DefaultDNSListen,
			HTTPListen: DefaultHTTPListen,
		},
		WiFi: WiFi{
			CredentialFile: DefaultCredentialFile,
			MaxRetries:     DefaultMaxRetries,
			ConnectTimeout: DefaultConnectTimeout,
		},
		Pins: Pins{
			LED:     DefaultLEDPin,
			Reset:   DefaultResetPin,
			Relay:   DefaultRelayPin,
			Trigger: DefaultTriggerPin,
			Echo:    DefaultEchoPin,
		},
		Cloud: Cloud{
			PollInterval: DefaultPollInterval,
			ReportEvery:  DefaultReportEvery,
		},
		ResetHold: DefaultResetHold,
		NTPHost:   DefaultNTPHost,
	}
}

// Load reads the configuration file at path. A missing file yields the
// defaults; a present but unparseable file is an error (unlike the
// credential store, the config file is operator-managed and corruption
// should be surfaced, not swallowed).
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults fills zero-valued fields after unmarshal so a partial
// config file only overrides what it names.
func (c *Config) applyDefaults() {
	d := Default()

	if c.AP.SSID == "" {
		c.AP.SSID = d.AP.SSID
	}
	if c.AP.Password == "" {
		c.AP.Password = d.AP.Password
	}
	if c.AP.IP == "" {
		c.AP.IP = d.AP.IP
	}
	if c.AP.Netmask == "" {
		c.AP.Netmask = d.AP.Netmask
	}
	if c.AP.Gateway == "" {
		c.AP.Gateway = d.AP.Gateway
	}
	if c.AP.DNSListen == "" {
		c.AP.DNSListen = d.AP.DNSListen
	}
	if c.AP.HTTPListen == "" {
		c.AP.HTTPListen = d.AP.HTTPListen
	}
	if c.WiFi.CredentialFile == "" {
		c.WiFi.CredentialFile = d.WiFi.CredentialFile
	}
	if c.WiFi.MaxRetries == 0 {
		c.WiFi.MaxRetries = d.WiFi.MaxRetries
	}
	if c.WiFi.ConnectTimeout == 0 {
		c.WiFi.ConnectTimeout = d.WiFi.ConnectTimeout
	}
	if c.Cloud.PollInterval == 0 {
		c.Cloud.PollInterval = d.Cloud.PollInterval
	}
	if c.Cloud.ReportEvery == 0 {
		c.Cloud.ReportEvery = d.Cloud.ReportEvery
	}
	if c.ResetHold == 0 {
		c.ResetHold = d.ResetHold
	}
	if c.NTPHost == "" {
		c.NTPHost = d.NTPHost
	}
}

// Validate checks the configuration for values the firmware cannot run with.
func (c *Config) Validate() error {
	if c.AP.SSID == "" {
		return fmt.Errorf("access point SSID must not be empty")
	}
	if len(c.AP.Password) > 0 && len(c.AP.Password) < 8 {
		return fmt.Errorf("access point password must be at least 8 characters (WPA2 requirement)")
	}
	if c.WiFi.MaxRetries < 1 {
		return fmt.Errorf("wifi max_retries must be at least 1, got %d", c.WiFi.MaxRetries)
	}
	if c.WiFi.ConnectTimeout <= 0 {
		return fmt.Errorf("wifi connect_timeout must be positive, got %v", c.WiFi.ConnectTimeout)
	}
	if c.ResetHold <= 0 {
		return fmt.Errorf("reset_hold must be positive, got %v", c.ResetHold)
	}
	return nil
}

// Save writes the configuration to path. Performs an atomic write to
// prevent corruption on crash.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	// Write to temporary file first (atomic write)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}
