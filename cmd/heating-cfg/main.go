// Heating-cfg is a host-side setup utility for the heating controller.
//
// It manages the controller's stored WiFi credential file: an interactive
// wizard, plus direct commands for scripted setup. Use it when the
// controller's filesystem is mounted on a host machine; devices in the
// field are provisioned through the captive portal instead.
//
// Usage:
//
//	heating-cfg [command] [flags]
//
// Running without arguments launches the interactive wizard.
// See 'heating-cfg --help' for available commands.
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
	Use:   "heating-cfg",
	Short: "Heating Controller Setup Utility",
	Long: `A host-side utility for preparing a heating controller's WiFi
credential file.

Provides an interactive wizard and direct credential commands for use
when the controller's storage is accessible from this machine.

If no command is specified, the interactive wizard will launch
automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWizard(cmd, args)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("heating-cfg %s (commit: %s)\n", version.Version, version.Commit)
	},
}
