// Package cloud implements the remote key-value store client the
// controller is driven by: a phone app writes ON/OFF commands and refresh
// requests into command.json, and the controller publishes its state to
// system.json and an append-only history.json log.
//
// Errors are classified (network / auth / HTTP / parse) with a Retryable
// flag so the polling loop can tell a flaky link from a bad token.
package cloud
