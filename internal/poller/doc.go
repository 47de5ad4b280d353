// Package poller runs the controller's steady-state command loop: poll
// the remote store for ON/OFF commands and refresh requests, drive the
// relay, and publish status and history while the heater is running.
package poller
