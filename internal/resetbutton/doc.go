// Package resetbutton implements the factory-reset gesture: holding the
// reset button through a fixed window at boot wipes the stored WiFi
// credentials and restarts the controller into its configuration portal.
//
// A press released before the window elapses is ignored, so a bumped
// button never destroys a working configuration.
package resetbutton
