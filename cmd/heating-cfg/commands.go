package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/andoniskgr/heating-system/internal/config"
	"github.com/andoniskgr/heating-system/internal/credentials"
	"github.com/andoniskgr/heating-system/internal/setupui"
)

// Credential command flags
var (
	credentialFile string
	showPassword   bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&credentialFile, "file", config.DefaultCredentialFile, "Path to the credential file")

	rootCmd.AddCommand(credsCmd)
	rootCmd.AddCommand(wizardCmd)
}

func store() *credentials.Store {
	return credentials.NewStore(credentialFile)
}

// wizardCmd launches the interactive credential wizard
var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive credential setup",
	Long: `Launch the interactive setup wizard.

The wizard walks through network name and password entry and writes the
credential file the controller reads at boot. This is also the default
when heating-cfg is run without a command.`,
	Example: `  # Launch the wizard against the default file
  heating-cfg

  # Write a specific credential file
  heating-cfg wizard --file /mnt/pico/wifi_creds.json`,
	RunE: runWizard,
}

func runWizard(cmd *cobra.Command, args []string) error {
	err := setupui.Run(store())
	if errors.Is(err, setupui.ErrAborted) {
		fmt.Println("Aborted; nothing written.")
		return nil
	}
	return err
}

// credsCmd groups the direct credential commands
var credsCmd = &cobra.Command{
	Use:   "creds",
	Short: "Manage the stored WiFi credentials",
	Long: `Manage the controller's stored WiFi credential file directly.

These commands are the scriptable alternative to the wizard: set writes a
credential pair, show displays the stored record, and clear removes it so
the controller boots into its configuration portal.`,
}

func init() {
	credsCmd.AddCommand(credsSetCmd)
	credsCmd.AddCommand(credsShowCmd)
	credsCmd.AddCommand(credsClearCmd)

	credsShowCmd.Flags().BoolVar(&showPassword, "show-password", false, "Print the password in clear text")
}

var credsSetCmd = &cobra.Command{
	Use:   "set <ssid>",
	Short: "Write a credential pair",
	Long: `Write a WiFi credential pair to the credential file.

The password is prompted for without echo. An empty password stores an
open-network record.`,
	Example: `  # Prompt for the password of HomeNet
  heating-cfg creds set HomeNet

  # Write to a mounted controller filesystem
  heating-cfg creds set HomeNet --file /mnt/pico/wifi_creds.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCredsSet,
}

func runCredsSet(cmd *cobra.Command, args []string) error {
	ssid := strings.TrimSpace(args[0])
	if ssid == "" {
		return fmt.Errorf("SSID must not be empty")
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}

	if err := store().Save(credentials.Credentials{SSID: ssid, Password: password}); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Printf("Credentials for %q written to %s\n", ssid, credentialFile)
	return nil
}

// promptPassword reads the password without echoing it. A non-terminal
// stdin (pipes, CI) falls back to a plain line read.
func promptPassword() (string, error) {
	fmt.Print("Password (empty for open network): ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil && err.Error() != "unexpected newline" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return line, nil
}

var credsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored credentials",
	Example: `  # Show the stored record with the password masked
  heating-cfg creds show

  # Reveal the password
  heating-cfg creds show --show-password`,
	RunE: runCredsShow,
}

func runCredsShow(cmd *cobra.Command, args []string) error {
	creds, ok := store().Read()
	if !ok {
		fmt.Printf("No credentials stored in %s\n", credentialFile)
		return nil
	}

	password := strings.Repeat("*", len(creds.Password))
	if showPassword {
		password = creds.Password
	}
	if creds.Password == "" {
		password = "(open network)"
	}

	fmt.Printf("SSID:     %s\n", creds.SSID)
	fmt.Printf("Password: %s\n", password)
	return nil
}

var credsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored credentials",
	Long: `Remove the credential file.

The controller boots into its configuration portal when no credentials
are stored. Clearing a file that does not exist is not an error.`,
	RunE: runCredsClear,
}

func runCredsClear(cmd *cobra.Command, args []string) error {
	if err := store().Erase(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	fmt.Printf("Credentials cleared from %s\n", credentialFile)
	return nil
}
