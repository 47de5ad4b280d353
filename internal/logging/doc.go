// Package logging provides structured logging for the heating controller.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the firmware. It provides both general logging
// functions and specialized functions for the provisioning and portal
// subsystems.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (DNS exchanges, poll ticks, raw requests)
//   - Info: Normal operations (state transitions, connects, portal requests)
//   - Warn: Non-fatal issues (failed connect attempts, time sync failures)
//   - Error: Serious issues (listener failures, cloud errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Station connected",
//	    zap.String("ssid", "HomeNet"),
//	    zap.String("ip", "192.168.1.42"),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
//	logging.LogStateTransition("client-connect", "ap-config", "retries exhausted")
//	logging.LogPortalRequest(remoteAddr, "GET", "/save")
//	logging.LogDNSQuery(remoteAddr, queryLen, answered)
//	logging.LogConnectAttempt(ssid, attempt, max)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// When the level is empty and HEATSYS_LOG_LEVEL is unset, logging is
// silent. This keeps the host-side CLI tools quiet by default.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
