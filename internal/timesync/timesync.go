// Package timesync sets the controller's notion of wall-clock time from
// NTP after it joins a network. Status reports and history rows carry
// timestamps, so a roughly correct clock matters; a perfectly synced one
// does not.
package timesync

import (
	"time"

	"github.com/beevik/ntp"
	"go.uber.org/zap"

	"github.com/andoniskgr/heating-system/internal/logging"
)

// DefaultHost is the NTP pool queried when the configuration names none.
const DefaultHost = "pool.ntp.org"

// queryTimeout bounds one NTP exchange.
const queryTimeout = 5 * time.Second

// Sync queries host once and returns the measured clock offset. Failure
// is logged and reported, never fatal; the caller keeps running on the
// unsynced clock.
func Sync(host string) (time.Duration, error) {
	if host == "" {
		host = DefaultHost
	}

	resp, err := ntp.QueryWithOptions(host, ntp.QueryOptions{Timeout: queryTimeout})
	if err != nil {
		logging.Warn("Time sync failed",
			zap.String("host", host),
			zap.Error(err),
		)
		return 0, err
	}
	if err := resp.Validate(); err != nil {
		logging.Warn("Time sync response rejected",
			zap.String("host", host),
			zap.Error(err),
		)
		return 0, err
	}

	logging.Info("Time synchronized",
		zap.String("host", host),
		zap.Duration("offset", resp.ClockOffset),
	)
	return resp.ClockOffset, nil
}
