// Package portal implements the captive-portal configuration session run
// while the device is unprovisioned.
//
// A session stands up the self-hosted access point, then serves two
// listeners from one goroutine: a UDP responder that resolves every DNS
// query to the device (captivedns), and a minimal HTTP server with three
// behaviors - the network-selection page on "/", credential validation on
// "/save", and a 302 to "/" for everything else.
//
// Submitted credentials are validated live against the target network
// before being persisted; validation failures are bounded by a retry
// counter that resets once it reports the terminal "failed after N tries"
// page. A session ends successfully the moment a validated pair is saved,
// at which point the caller reboots the device so the new credentials take
// effect.
//
// Errors while serving one connection never take the session down: they
// are logged, the connection is closed, and the loop keeps serving.
package portal
