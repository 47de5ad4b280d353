package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/andoniskgr/heating-system/internal/logging"
)

// Sentinel errors returned by Load. Callers that only care about "do I have
// usable credentials" should use Read, which applies the collapsing policy.
var (
	// ErrNotFound means no credential record exists. This is a normal
	// state (unprovisioned device), not a fault.
	ErrNotFound = errors.New("no stored credentials")

	// ErrCorrupt means a record exists but cannot be parsed or is missing
	// the required ssid field.
	ErrCorrupt = errors.New("credential record is corrupt")
)

// Credentials is the single stored (network, secret) pair. Password may be
// empty for open networks; SSID must not be.
type Credentials struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

// Store persists at most one credential record in a JSON file.
type Store struct {
	path string
}

// NewStore returns a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the stored record, distinguishing the three failure modes:
// ErrNotFound (no file), ErrCorrupt (unparseable or missing ssid), or a
// wrapped I/O error.
func (s *Store) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if creds.SSID == "" {
		return nil, fmt.Errorf("%w: missing ssid", ErrCorrupt)
	}

	return &creds, nil
}

// Read is the soft-fail view the provisioning flow uses: any failure,
// whether the file is absent, corrupt, or unreadable, collapses to
// "no credentials". The collapse is deliberate policy, the device recovers
// by re-provisioning rather than faulting; corrupt and I/O cases are still
// logged so they stay diagnosable.
func (s *Store) Read() (Credentials, bool) {
	creds, err := s.Load()
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logging.Warn("Treating unreadable credential record as absent",
				zap.String("path", s.path),
				zap.Error(err),
			)
		}
		return Credentials{}, false
	}
	return *creds, true
}

// Save writes the record atomically (temp file + rename) so a crash can
// never leave a partially overwritten record behind.
func (s *Store) Save(creds Credentials) error {
	if creds.SSID == "" {
		return fmt.Errorf("refusing to save credentials with empty ssid")
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary credential file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save credential file: %w", err)
	}

	logging.Info("Credentials saved", zap.String("ssid", creds.SSID))
	return nil
}

// Erase removes the record. Erasing an absent record is not an error.
func (s *Store) Erase() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to erase credential file: %w", err)
	}
	return nil
}

// Exists reports whether a usable record is stored.
func (s *Store) Exists() bool {
	_, ok := s.Read()
	return ok
}
