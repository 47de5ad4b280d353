package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andoniskgr/heating-system/internal/announce"
	"github.com/andoniskgr/heating-system/internal/cloud"
	"github.com/andoniskgr/heating-system/internal/config"
	"github.com/andoniskgr/heating-system/internal/credentials"
	"github.com/andoniskgr/heating-system/internal/hal"
	"github.com/andoniskgr/heating-system/internal/logging"
	"github.com/andoniskgr/heating-system/internal/poller"
	"github.com/andoniskgr/heating-system/internal/portal"
	"github.com/andoniskgr/heating-system/internal/provision"
	"github.com/andoniskgr/heating-system/internal/relay"
	"github.com/andoniskgr/heating-system/internal/resetbutton"
	"github.com/andoniskgr/heating-system/internal/sta"
	"github.com/andoniskgr/heating-system/internal/timesync"
	"github.com/andoniskgr/heating-system/internal/ultrasonic"
)

var (
	configPath string
	logLevel   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Provision WiFi and run the command loop",
	Long: `Run the controller firmware.

The boot sequence: honor a held reset button, connect with stored
credentials, and otherwise serve the captive configuration portal until
credentials are saved. Once connected, the daemon announces itself over
mDNS, syncs the clock, and polls the remote store for commands.

A missing configuration file is not an error; the shipped defaults apply.`,
	Example: `  # Run with the defaults
  heatingd run

  # Run with a configuration file and verbose logging
  heatingd run --config /etc/heatingd.yaml --log-level debug`,
	RunE: runDaemon,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "heatingd.yaml", "Path to the configuration file")
	runCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the configuration file")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if level != "" {
		if err := logging.Initialize(level); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
	} else if err := logging.InitializeFromEnv(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	if cfg.Cloud.BaseURL == "" {
		return fmt.Errorf("cloud base_url is not configured (set it in %s)", configPath)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	board := hal.NewHostBoard()
	store := credentials.NewStore(cfg.WiFi.CredentialFile)

	connector := sta.New(board.Radio, store, board.Clock)
	connector.Timeout = cfg.WiFi.ConnectTimeout
	connector.MaxRetries = cfg.WiFi.MaxRetries

	p, err := portal.New(board.Radio, store, connector, cfg.AP)
	if err != nil {
		return fmt.Errorf("failed to set up portal: %w", err)
	}
	p.MaxRetries = cfg.WiFi.MaxRetries

	reset := resetbutton.New(board.Reset, store, board.Clock, board.Rebooter)
	reset.Hold = cfg.ResetHold

	manager := provision.New(store, connector, p, reset, board)
	manager.SyncTime = func() { timesync.Sync(cfg.NTPHost) }

	ip, err := manager.EnsureConnected(ctx)
	if err != nil {
		if errors.Is(err, provision.ErrRestartRequired) {
			logging.Info("Restart requested, exiting")
			return nil
		}
		return fmt.Errorf("network provisioning failed: %w", err)
	}

	ann, err := announce.Start(ip)
	if err != nil {
		logging.Warn("mDNS announcement failed", zap.Error(err))
	}
	defer ann.Stop()

	// Credentials rewritten out from under a running daemon (by
	// heating-cfg or an operator) invalidate the current association;
	// restart so boot picks them up cleanly.
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	if changes, err := store.Watch(watchCtx); err != nil {
		logging.Warn("Credential watch unavailable", zap.Error(err))
	} else {
		go func() {
			if _, ok := <-changes; ok {
				logging.Info("Stored credentials changed externally, restarting")
				board.Rebooter.Reboot()
				stop()
			}
		}()
	}

	heater := relay.New(board.Relay)
	sensor := ultrasonic.New(board.Trigger, board.Echo, board.Clock)
	client := cloud.NewClient(cfg.Cloud)

	loop := poller.New(client, heater, sensor, board.Clock)
	if cfg.Cloud.PollInterval > 0 {
		loop.Interval = cfg.Cloud.PollInterval
	}
	if cfg.Cloud.ReportEvery > 0 {
		loop.ReportEvery = cfg.Cloud.ReportEvery
	}

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
