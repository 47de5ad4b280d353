// Package sta joins the controller to an existing wireless network in
// station (client) mode, polling the radio until the association completes
// or a bounded timeout elapses.
package sta
