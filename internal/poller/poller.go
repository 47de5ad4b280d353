package poller

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/andoniskgr/heating-system/internal/cloud"
	"github.com/andoniskgr/heating-system/internal/hal"
	"github.com/andoniskgr/heating-system/internal/logging"
	"github.com/andoniskgr/heating-system/internal/relay"
	"github.com/andoniskgr/heating-system/internal/ultrasonic"
)

const (
	// DefaultInterval is the command poll cadence.
	DefaultInterval = 2 * time.Second

	// DefaultReportEvery is the periodic status report spacing while the
	// relay is energized.
	DefaultReportEvery = 30 * time.Minute

	// timestampLayout matches what the status consumers expect.
	timestampLayout = "2006-01-02 15:04:05"
)

// Poller is the controller's steady-state loop: fetch the remote command
// document, apply ON/OFF, serve manual refresh requests, and publish
// periodic status while the heater runs.
//
// Duplicate suppression state lives in the struct. A command document is a
// level, not an edge: the same ON stays in the store until overwritten, so
// the loop must remember what it already applied.
type Poller struct {
	client *cloud.Client
	relay  *relay.Relay
	sensor *ultrasonic.Sensor
	clock  hal.Clock

	Interval    time.Duration
	ReportEvery time.Duration

	lastSysCmd    string
	lastManualRaw string
	lastReport    time.Time
}

// New assembles a Poller with the default cadence.
func New(client *cloud.Client, r *relay.Relay, sensor *ultrasonic.Sensor, clock hal.Clock) *Poller {
	return &Poller{
		client:      client,
		relay:       r,
		sensor:      sensor,
		clock:       clock,
		Interval:    DefaultInterval,
		ReportEvery: DefaultReportEvery,
		lastReport:  clock.Now(),
	}
}

// Run probes the store once, then polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.client.TestConnection(ctx, p.timestamp()); err != nil {
		logging.Warn("Store connection test failed", zap.Error(err))
	} else {
		logging.Info("Store connection verified")
	}

	p.lastReport = p.clock.Now()
	for {
		if ctx.Err() != nil {
			logging.Info("Polling loop stopped")
			return ctx.Err()
		}
		p.cycle(ctx)
		p.clock.Sleep(p.Interval)
	}
}

// cycle performs one poll iteration. Store failures are logged and the
// loop carries on; the controller keeps its last commanded state.
func (p *Poller) cycle(ctx context.Context) {
	cmd, err := p.client.FetchCommand(ctx)
	if err != nil {
		logPollError("Command poll failed", err)
	} else if cmd != nil {
		p.applySystemCmd(ctx, cmd.SystemCmd.String())
		p.applyManualUpdate(ctx, cmd.ManualUpdate)
	}

	if p.relay.IsOn() && p.clock.Now().Sub(p.lastReport) > p.ReportEvery {
		p.report(ctx)
	}
}

// applySystemCmd switches the relay on a fresh ON/OFF command. A repeat of
// the last applied command is ignored so re-reading the same document
// never re-fires side effects.
func (p *Poller) applySystemCmd(ctx context.Context, cmd string) {
	if cmd == "" || cmd == p.lastSysCmd {
		return
	}

	switch cmd {
	case "ON":
		p.relay.On()
	case "OFF":
		p.relay.Off()
	default:
		logging.Warn("Ignoring unknown system command", zap.String("command", cmd))
		return
	}

	p.lastSysCmd = cmd
	p.report(ctx)
}

// applyManualUpdate serves a phone-initiated refresh: publish the current
// state without touching the relay, then clear the request flag.
//
// The acknowledge is remembered only after it succeeds, so a failed clear
// means the same request is served again next cycle. At-least-once is the
// right trade; a missed refresh is invisible to the user, a dropped one
// is not.
func (p *Poller) applyManualUpdate(ctx context.Context, flag *cloud.FlexBool) {
	if flag == nil {
		return
	}
	if !flag.Value {
		p.lastManualRaw = ""
		return
	}
	if flag.Raw == p.lastManualRaw {
		return
	}

	logging.Info("Manual refresh requested")
	p.report(ctx)

	if err := p.client.AckManualUpdate(ctx); err != nil {
		logPollError("Failed to acknowledge manual refresh", err)
		return
	}
	p.lastManualRaw = flag.Raw
}

// report publishes the current relay state and tank level, plus a history
// row, and restarts the periodic report timer. A dead sensor reports
// level 0 rather than blocking the loop.
func (p *Poller) report(ctx context.Context) {
	level := 0.0
	if p.sensor != nil {
		var err error
		if level, err = p.sensor.Measure(); err != nil {
			logging.Warn("Distance measurement failed", zap.Error(err))
			level = 0
		}
	}

	ts := p.timestamp()
	status := p.relay.StatusString()

	if err := p.client.UpdateStatus(ctx, cloud.Status{
		CurrentStatus: status,
		CurrentLevel:  level,
		LastUpdate:    ts,
	}); err != nil {
		logPollError("Status update failed", err)
	}
	if err := p.client.AppendHistory(ctx, cloud.HistoryEntry{
		Time:   ts,
		Status: status,
		Level:  level,
	}); err != nil {
		logPollError("History append failed", err)
	}

	p.lastReport = p.clock.Now()
}

func (p *Poller) timestamp() string {
	return p.clock.Now().Format(timestampLayout)
}

func logPollError(message string, err error) {
	var cerr *cloud.Error
	if errors.As(err, &cerr) && !cerr.Retryable {
		logging.Error(message, zap.Error(err))
		return
	}
	logging.Warn(message, zap.Error(err))
}
