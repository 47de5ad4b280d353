// Package config holds the controller configuration.
//
// All tunable constants live here: the self-hosted access point identity,
// credential file location, retry policy, GPIO pin assignments, and the
// cloud store endpoint. Configuration is loaded once at startup from a YAML
// file; a missing file means the shipped defaults apply unchanged.
//
// Partial files are supported - a config that only sets the cloud section
// inherits every other default. Parse errors and invalid values are
// surfaced at startup rather than silently replaced, since the file is
// operator-managed.
package config
