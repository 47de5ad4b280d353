// Package credentials persists the single WiFi credential record across
// power cycles.
//
// At most one (ssid, password) pair exists at a time; there is no profile
// list. Absence of the record is the meaningful "unprovisioned" state, not
// an error. Load distinguishes not-found, corrupt and I/O failures for
// callers that care; Read collapses all three to "no credentials", which is
// the recovery policy the provisioning flow wants.
//
// Writes are atomic (temp file + rename) and erase is idempotent. Watch
// exposes external modifications of the record via fsnotify so a running
// firmware can react to host-side reprovisioning.
package credentials
