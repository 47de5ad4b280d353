// Package captivedns implements the minimal DNS responder behind the
// captive portal.
//
// While the device runs its configuration access point, every name
// resolution query from a joined client is answered with the device's own
// address. Operating systems probe well-known hostnames after joining a
// network; redirecting those probes is what makes the configuration page
// pop up automatically.
//
// BuildResponse is a pure function over raw packet bytes. Responses are
// synthesized per query and never cached; queries shorter than the DNS
// header get no response at all.
package captivedns
