// Heatingd is the heating controller firmware daemon.
//
// On startup it brings the controller onto a WiFi network: stored
// credentials are tried first, and when none work a captive configuration
// portal is served on a self-hosted access point. Once connected, the
// daemon polls the remote store for ON/OFF commands and publishes status
// and history.
//
// Usage:
//
//	heatingd run [flags]
//
// See 'heatingd run --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andoniskgr/heating-system/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "heatingd",
	Short: "Heating Controller Daemon",
	Long: `The heating controller firmware daemon.

Provisions WiFi through a captive configuration portal when no working
credentials are stored, then runs the remote command loop: relay ON/OFF,
manual status refresh, and periodic tank-level reports.

Note: For managing stored credentials from a host machine, use the
separate 'heating-cfg' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("heatingd %s (commit: %s)\n", version.Version, version.Commit)
	},
}
